/*
 * selection.go, part of mdreport.
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
	"strconv"
	"strings"
)

//The standard aminoacidic residues, for the "protein" selection keyword.
//Note that just the common ones are present.
var proteinResidues = map[string]bool{
	"SER": true,
	"THR": true,
	"ASN": true,
	"GLN": true,
	"SEC": true, //Selenocysteine!
	"CYS": true,
	"GLY": true,
	"PRO": true,
	"ALA": true,
	"VAL": true,
	"ILE": true,
	"LEU": true,
	"MET": true,
	"PHE": true,
	"TYR": true,
	"TRP": true,
	"ARG": true,
	"HIS": true,
	"LYS": true,
	"ASP": true,
	"GLU": true,
}

//Select evaluates an atom-selection expression against the atoms of S
//and returns the list of matching indexes, in atom order. The grammar is
//a small subset of the MDAnalysis one, enough for selections like
//"protein and name CA": clauses joined by "and", where each clause is
//one of "all", "protein", "name N1 N2...", "chain X" or
//"resid N" / "resid N-M". An expression that matches no atoms is an
//error: a reporter with an empty selection can't do anything useful.
func (S *Structure) Select(expr string) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, confErrorf("empty selection expression")
	}
	keep := make([]bool, S.Len())
	for i := range keep {
		keep[i] = true
	}
	for _, clause := range strings.Split(expr, " and ") {
		fields := strings.Fields(clause)
		if len(fields) == 0 {
			return nil, confErrorf("empty clause in selection %q", expr)
		}
		match, err := S.matchClause(fields)
		if err != nil {
			return nil, errDecorate(err, "Select")
		}
		for i := range keep {
			keep[i] = keep[i] && match[i]
		}
	}
	ret := make([]int, 0, S.Len())
	for i, v := range keep {
		if v {
			ret = append(ret, i)
		}
	}
	if len(ret) == 0 {
		return nil, confErrorf("selection %q matches no atoms", expr)
	}
	return ret, nil
}

func (S *Structure) matchClause(fields []string) ([]bool, error) {
	match := make([]bool, S.Len())
	switch fields[0] {
	case "all":
		for i := range match {
			match[i] = true
		}
	case "protein":
		for i, at := range S.Atoms {
			match[i] = proteinResidues[at.Molname]
		}
	case "name":
		if len(fields) < 2 {
			return nil, confErrorf("name clause needs at least one atom name")
		}
		for i, at := range S.Atoms {
			match[i] = isInString(fields[1:], at.Name)
		}
	case "chain":
		if len(fields) != 2 || len(fields[1]) != 1 {
			return nil, confErrorf("chain clause needs exactly one 1-character chain ID")
		}
		for i, at := range S.Atoms {
			match[i] = at.Chain == fields[1][0]
		}
	case "resid":
		if len(fields) != 2 {
			return nil, confErrorf("resid clause needs exactly one ID or ID range")
		}
		lo, hi, err := parseResidRange(fields[1])
		if err != nil {
			return nil, err
		}
		for i, at := range S.Atoms {
			match[i] = at.Molid >= lo && at.Molid <= hi
		}
	default:
		return nil, confErrorf("unknown selection keyword %q", fields[0])
	}
	return match, nil
}

func parseResidRange(s string) (int, int, error) {
	if lohi := strings.SplitN(s, "-", 2); len(lohi) == 2 {
		lo, err1 := strconv.Atoi(lohi[0])
		hi, err2 := strconv.Atoi(lohi[1])
		if err1 != nil || err2 != nil || lo > hi {
			return 0, 0, confErrorf("malformed resid range %q", s)
		}
		return lo, hi, nil
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, confErrorf("malformed resid %q", s)
	}
	return id, id, nil
}

//isInString returns true if test is in container, false otherwise.
func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
