/*
 * pdb.go, part of mdreport.
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
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/mdreport/v3"
)

//Atom contains the per-atom information read from a structure file,
//except for the coordinates, which go in a separate v3.Matrix.
//Only the fields the reporter selections need are kept.
type Atom struct {
	Name    string
	Id      int
	Molname string
	Molid   int
	Chain   byte
	Het     bool
}

//Structure is a reference or wrapping structure: the atoms, their
//coordinates (one frame, in A) and, if the file carried a CRYST1
//record, the lengths of the periodic box.
type Structure struct {
	Atoms  []*Atom
	Coords *v3.Matrix
	Box    [3]float64
	HasBox bool
}

//Len returns the number of atoms in the structure.
func (S *Structure) Len() int {
	return len(S.Atoms)
}

//Parses a valid ATOM or HETATM line of a PDB file. Returns the Atom
//with the info except for the coordinates, which are returned
//separately as an array of 3 float64.
func readPDBLine(line string) (*Atom, [3]float64, error) {
	var coords [3]float64
	err := make([]error, 5)
	if len(line) < 54 {
		return nil, coords, confErrorf("PDB line too short: %q", line)
	}
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	atom.Id, err[0] = strconv.Atoi(strings.TrimSpace(line[6:11]))
	atom.Name = strings.TrimSpace(line[12:16])
	//PDB says that pos. 17 is for other thing but it is
	//used for residue name in many cases.
	atom.Molname = strings.TrimSpace(line[17:20])
	atom.Chain = line[21]
	atom.Molid, err[1] = strconv.Atoi(strings.TrimSpace(line[22:26]))
	coords[0], err[2] = strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
	coords[1], err[3] = strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
	coords[2], err[4] = strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
	for i := range err {
		if err[i] != nil {
			return nil, coords, confErrorf("malformed PDB line %q: %s", line, err[i].Error())
		}
	}
	return atom, coords, nil
}

//Parses a CRYST1 record and returns the box lengths a, b, c.
//The angles are ignored: the wrapper only supports rectangular boxes.
func readCryst1(line string) ([3]float64, error) {
	var box [3]float64
	if len(line) < 33 {
		return box, confErrorf("CRYST1 record too short: %q", line)
	}
	err := make([]error, 3)
	box[0], err[0] = strconv.ParseFloat(strings.TrimSpace(line[6:15]), 64)
	box[1], err[1] = strconv.ParseFloat(strings.TrimSpace(line[15:24]), 64)
	box[2], err[2] = strconv.ParseFloat(strings.TrimSpace(line[24:33]), 64)
	for i := range err {
		if err[i] != nil {
			return box, confErrorf("malformed CRYST1 record %q: %s", line, err[i].Error())
		}
	}
	return box, nil
}

//ReadPDB reads the first model of a PDB file and returns it as a
//Structure. Multi-model files are allowed but only the first model is
//kept; the reference and wrapping structures are single-conformation
//by construction.
func ReadPDB(path string) (*Structure, error) {
	pdbfile, err := os.Open(path)
	if err != nil {
		return nil, confErrorf("can't open structure file %s: %s", path, err.Error())
	}
	defer pdbfile.Close()
	S := new(Structure)
	coords := make([]float64, 0, 300)
	pdb := bufio.NewReader(pdbfile)
	for {
		line, rerr := pdb.ReadString('\n')
		if rerr != nil && line == "" {
			break
		}
		switch {
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			atom, c, err := readPDBLine(line)
			if err != nil {
				return nil, errDecorate(err, "ReadPDB "+path)
			}
			S.Atoms = append(S.Atoms, atom)
			coords = append(coords, c[0], c[1], c[2])
		case strings.HasPrefix(line, "CRYST1"):
			S.Box, err = readCryst1(line)
			if err != nil {
				return nil, errDecorate(err, "ReadPDB "+path)
			}
			S.HasBox = true
		}
		if strings.HasPrefix(line, "ENDMDL") {
			log.Printf("mdreport: %s has more than one model, only the first one will be read", path)
			break
		}
		if rerr != nil {
			break
		}
	}
	if len(S.Atoms) == 0 {
		return nil, confErrorf("no atoms read from %s", path)
	}
	S.Coords, err = v3.NewMatrix(coords)
	if err != nil {
		return nil, confErrorf("inconsistent coordinates in %s: %s", path, err.Error())
	}
	return S, nil
}
