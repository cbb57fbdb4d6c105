/*
 * reporter.go, part of mdreport.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package report

import (
	"fmt"

	"github.com/rmera/mdreport/batch"
	v3 "github.com/rmera/mdreport/v3"
)

//NmToA converts the simulation length unit (nm) to the internal one (A).
const NmToA = 10.0

//Simulation is the topology side of the host simulation handle. The
//reporter only needs to enumerate atom names, in atom order.
type Simulation interface {
	AtomNames() []string
}

//State is the current-snapshot side of the host simulation handle.
//Positions returns the coordinates of every atom in the system, in nm.
type State interface {
	Positions() *v3.Matrix
}

//Reporter samples a running simulation: on every Report call it
//extracts the configured atom subset, computes the enabled structural
//descriptors and accumulates them, flushing a container file every
//FramesPerBatch frames. It is driven synchronously by the host
//simulation loop and is not safe for concurrent use, which matches how
//simulation engines call their reporters.
type Reporter struct {
	opts    Options
	refpos  *v3.Matrix
	refmap  *ContactMap
	wrapper *Wrapper
	acc     *batch.Accumulator
	fileidx int
}

//NewReporter builds a Reporter from the given options. All
//configuration problems, including missing or unusable reference and
//wrapping structures, surface here as ConfigurationError; a Reporter
//that constructs without error will not fail later for configuration
//reasons.
func NewReporter(O *Options) (*Reporter, error) {
	if O == nil {
		return nil, confErrorf("nil options")
	}
	if err := O.Validate(); err != nil {
		return nil, errDecorate(err, "NewReporter")
	}
	R := new(Reporter)
	R.opts = *O
	R.opts.AtomNames = append([]string{}, O.AtomNames...)
	var err error
	if O.RefFile != "" {
		S, err := ReadPDB(O.RefFile)
		if err != nil {
			return nil, errDecorate(err, "NewReporter")
		}
		sel, err := S.Select(O.Selection)
		if err != nil {
			return nil, errDecorate(err, "NewReporter")
		}
		R.refpos = v3.Zeros(len(sel))
		R.refpos.SomeVecs(S.Coords, sel)
	}
	if O.FractionOfContacts {
		//Same threshold, same code path as the per-frame maps. The two
		//must not drift apart or the fraction becomes meaningless.
		R.refmap, err = NewContactMap(R.refpos, O.Threshold)
		if err != nil {
			return nil, errDecorate(err, "NewReporter")
		}
		if R.refmap.Len() == 0 {
			return nil, confErrorf("reference structure %s has no contacts under threshold %v",
				O.RefFile, O.Threshold)
		}
	}
	if O.WrapFile != "" {
		R.wrapper, err = NewWrapper(O.WrapFile, O.Selection)
		if err != nil {
			return nil, errDecorate(err, "NewReporter")
		}
	}
	fields := batch.Fields{
		ContactMap:         O.ContactMap,
		PointCloud:         O.PointCloud,
		RMSD:               O.RefFile != "",
		FractionOfContacts: O.FractionOfContacts,
	}
	R.acc, err = batch.NewAccumulator(fields, O.FramesPerBatch)
	if err != nil {
		return nil, confErrorf("can't build the batch accumulator: %s", err.Error())
	}
	return R, nil
}

//DescribeNextReport tells the host loop when the reporter wants to be
//called next and what it needs then: the number of steps until the next
//report, and whether positions, velocities, forces and energies are
//required. This reporter only ever asks for positions.
func (R *Reporter) DescribeNextReport(currentStep int) (steps int, pos, vel, force, ene bool) {
	steps = R.opts.ReportInterval - currentStep%R.opts.ReportInterval
	return steps, true, false, false, false
}

//Report processes one simulation snapshot: selects the configured atoms
//from the full coordinate frame, converts nm to A at reduced (float32)
//precision, computes the enabled descriptors, and appends them to the
//current batch, flushing it if it became full. A flush failure leaves
//the batch in memory untouched and later calls keep accumulating past
//the batch size; once the destination is usable again, FlushRemaining
//writes everything collected so far.
func (R *Reporter) Report(sim Simulation, state State) error {
	idx := make([]int, 0, 500)
	for i, name := range sim.AtomNames() {
		if isInString(R.opts.AtomNames, name) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return confErrorf("atom names %v match nothing in the simulation topology", R.opts.AtomNames)
	}
	all := state.Positions()
	if all.NVecs() < idx[len(idx)-1]+1 {
		return fmt.Errorf("Report: %d positions for a topology with at least %d atoms",
			all.NVecs(), idx[len(idx)-1]+1)
	}
	pos := v3.Zeros(len(idx))
	pos.SomeVecs(all, idx)
	pos.Scale(NmToA, pos.Dense)
	reducePrecision(pos)
	if R.refpos != nil && pos.NVecs() != R.refpos.NVecs() {
		return fmt.Errorf("Report: selected %d atoms but the reference has %d",
			pos.NVecs(), R.refpos.NVecs())
	}
	rec := new(batch.Record)
	if R.opts.ContactMap || R.opts.FractionOfContacts {
		cm, err := NewContactMap(pos, R.opts.Threshold)
		if err != nil {
			return errDecorate(err, "Report")
		}
		if R.opts.ContactMap {
			rec.ContactRows = cm.Rows
			rec.ContactCols = cm.Cols
		}
		if R.opts.FractionOfContacts {
			rec.FractionOfContacts = FractionOfContacts(cm, R.refmap)
		}
	}
	if R.opts.PointCloud {
		rec.Points = pos
	}
	if R.refpos != nil {
		rpos := pos
		if R.wrapper != nil {
			var err error
			rpos, err = R.wrapper.Wrap(pos)
			if err != nil {
				return err
			}
		}
		rmsd, err := RMSDSuper(rpos, R.refpos)
		if err != nil {
			return err
		}
		rec.RMSD = rmsd
	}
	if err := R.acc.Append(rec); err != nil {
		return err
	}
	if R.acc.Full() {
		return R.flush()
	}
	return nil
}

//FlushRemaining writes whatever frames are pending as a (possibly
//short) final batch and resets the accumulator. It is a no-op when
//nothing is pending. The host's termination sequence should call this
//(or Close) so trailing frames below a full batch are not lost.
func (R *Reporter) FlushRemaining() error {
	if R.acc.Len() == 0 {
		return nil
	}
	return R.flush()
}

//Close flushes any pending frames. The Reporter can still be used
//afterwards; Close only exists so the host can treat the reporter as
//any other output resource at shutdown.
func (R *Reporter) Close() error {
	return R.FlushRemaining()
}

//FramesPending returns the number of frames accumulated since the last
//flush.
func (R *Reporter) FramesPending() int {
	return R.acc.Len()
}

func (R *Reporter) flush() error {
	name := fmt.Sprintf("%s.%d.mdd.zst", R.opts.Base, R.fileidx)
	if err := batch.Write(name, R.acc); err != nil {
		return errDecorate(err, "flush")
	}
	R.acc.Reset()
	R.fileidx++
	return nil
}

//reducePrecision rounds every coordinate through float32. Descriptors
//downstream are only stored at reduced precision anyway, and this keeps
//the computed values consistent with what gets persisted.
func reducePrecision(m *v3.Matrix) {
	r := m.NVecs()
	for i := 0; i < r; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, float64(float32(m.At(i, j))))
		}
	}
}
