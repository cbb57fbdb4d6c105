/*
 * options.go, part of mdreport.
 *
 * Copyright 2023 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package report

import (
	"os"

	"github.com/pelletier/go-toml"
)

//Options contains the full configuration of a Reporter. It is read once
//at construction; the Reporter keeps its own copy, so later changes to
//an Options value have no effect on a built Reporter.
type Options struct {
	//Base is the output base name; each flushed batch goes to
	//Base.<idx>.mdd.zst.
	Base string `toml:"output_base"`
	//ReportInterval is the sampling period in simulation steps.
	ReportInterval int `toml:"report_interval"`
	//FramesPerBatch is the number of frames accumulated before an
	//automatic flush. 0 disables auto-flushing; the host must then call
	//FlushRemaining itself.
	FramesPerBatch int `toml:"frames_per_batch"`
	//AtomNames are the atom names extracted from the simulation
	//topology on every report call.
	AtomNames []string `toml:"atom_names"`
	//Selection is the expression applied to the reference and wrapping
	//structures. It should match the same atoms, in the same order, as
	//AtomNames does on the simulation topology.
	Selection string `toml:"selection"`
	//RefFile is the reference structure (PDB). Required for RMSD,
	//contact maps and fraction of contacts.
	RefFile string `toml:"reference_pdb"`
	//WrapFile, if given, is a structure with a CRYST1 box used to wrap
	//frames into one periodic image before the RMSD calculation.
	WrapFile string `toml:"wrap_pdb"`
	//Threshold is the contact distance cutoff, in A.
	Threshold float64 `toml:"contact_threshold"`

	ContactMap         bool `toml:"contact_map"`
	PointCloud         bool `toml:"point_cloud"`
	FractionOfContacts bool `toml:"fraction_of_contacts"`
}

//DefaultOptions returns reasonable options for atomistic protein
//trajectories: alpha-carbon selections and an 8 A contact cutoff.
//Base, RefFile and FramesPerBatch are left for the caller to fill.
func DefaultOptions() *Options {
	O := new(Options)
	O.ReportInterval = 1
	O.AtomNames = []string{"CA"}
	O.Selection = "protein and name CA"
	O.Threshold = 8.0
	O.ContactMap = true
	O.PointCloud = true
	O.FractionOfContacts = true
	return O
}

//ReadOptions loads options from a TOML file, on top of DefaultOptions:
//keys absent from the file keep their default values.
func ReadOptions(path string) (*Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, confErrorf("can't open options file %s: %s", path, err.Error())
	}
	defer f.Close()
	O := DefaultOptions()
	if err := toml.NewDecoder(f).Decode(O); err != nil {
		return nil, confErrorf("can't parse options file %s: %s", path, err.Error())
	}
	return O, nil
}

//Validate checks the option combinations that can't work, before any
//file is touched. Both the contact map and the fraction of contacts
//need a reference structure.
func (O *Options) Validate() error {
	if O.Base == "" {
		return confErrorf("no output base name given")
	}
	if O.ReportInterval <= 0 {
		return confErrorf("report interval must be positive, got %d", O.ReportInterval)
	}
	if O.FramesPerBatch < 0 {
		return confErrorf("frames per batch can't be negative, got %d", O.FramesPerBatch)
	}
	if len(O.AtomNames) == 0 {
		return confErrorf("no atom names to select")
	}
	if O.FractionOfContacts && O.RefFile == "" {
		return confErrorf("computing fraction_of_contacts requires reference_pdb")
	}
	if O.ContactMap && O.RefFile == "" {
		return confErrorf("computing contact_map requires reference_pdb")
	}
	if (O.ContactMap || O.FractionOfContacts) && O.Threshold <= 0 {
		return confErrorf("contact threshold must be positive, got %v", O.Threshold)
	}
	if !O.ContactMap && !O.PointCloud && !O.FractionOfContacts && O.RefFile == "" {
		return confErrorf("nothing to report: all descriptors disabled and no reference for RMSD")
	}
	return nil
}
