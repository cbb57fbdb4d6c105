/*
 * wrap.go, part of mdreport.
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
	"fmt"
	"math"

	v3 "github.com/rmera/mdreport/v3"
)

//Wrapper re-centers position frames into one periodic image of a
//rectangular simulation box. The box and the anchor subset come from a
//wrapping-topology PDB loaded once at construction; Wrap itself is pure,
//it keeps no mutable state between calls.
//
//The procedure is a two-pass heuristic: translate so the geometric
//center of the anchor subset (the
//first chain of the selection) sits at the box center and wrap every
//atom into the box, then recompute the center over the whole selection
//and translate-and-wrap again. The second pass fixes assemblies left
//split across a boundary when the whole-selection center differs much
//from the anchor's. This is best-effort re-imaging, not an exact unwrap,
//and no convergence is guaranteed for arbitrary topologies.
//
//Centers are geometric, not mass-weighted: the structure reader keeps
//no masses, and for the single-atom-type selections this targets (CA
//traces) both centers coincide anyway.
type Wrapper struct {
	box    [3]float64
	anchor []int //selection-relative indexes of the anchor chain
	natoms int
}

//NewWrapper builds a Wrapper from the structure in path, using the atoms
//matched by the selection expression expr. The file must carry a CRYST1
//record with the box lengths.
func NewWrapper(path, expr string) (*Wrapper, error) {
	S, err := ReadPDB(path)
	if err != nil {
		return nil, errDecorate(err, "NewWrapper")
	}
	if !S.HasBox {
		return nil, confErrorf("wrap structure %s has no CRYST1 box", path)
	}
	sel, err := S.Select(expr)
	if err != nil {
		return nil, errDecorate(err, "NewWrapper")
	}
	W := new(Wrapper)
	W.box = S.Box
	W.natoms = len(sel)
	first := S.Atoms[sel[0]].Chain
	for i, v := range sel {
		if S.Atoms[v].Chain == first {
			W.anchor = append(W.anchor, i)
		}
	}
	return W, nil
}

//Len returns the number of atoms Wrap expects per frame.
func (W *Wrapper) Len() int {
	return W.natoms
}

//Wrap returns a new frame with the coordinates of frame translated and
//wrapped into one periodic image of the box. The input is not modified.
//Frame order must match the selection the Wrapper was built with.
func (W *Wrapper) Wrap(frame *v3.Matrix) (*v3.Matrix, error) {
	n := frame.NVecs()
	if n != W.natoms {
		return nil, fmt.Errorf("Wrap: got %d atoms, want %d", n, W.natoms)
	}
	wrapped := v3.Zeros(n)
	wrapped.Copy(frame.Dense)
	W.recenter(wrapped, W.anchor)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	W.recenter(wrapped, all)
	return wrapped, nil
}

//recenter translates coords so the geometric center of the subset sits
//at the box center, then wraps every atom into [0, box) per axis.
func (W *Wrapper) recenter(coords *v3.Matrix, subset []int) {
	sub := v3.Zeros(len(subset))
	sub.SomeVecs(coords, subset)
	center := sub.Mean()
	trans := v3.Zeros(1)
	for j := 0; j < 3; j++ {
		trans.Set(0, j, W.box[j]/2-center.At(0, j))
	}
	coords.AddVec(coords, trans)
	n := coords.NVecs()
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			x := coords.At(i, j)
			coords.Set(i, j, x-math.Floor(x/W.box[j])*W.box[j])
		}
	}
}
