/*
 * descriptors.go, part of mdreport.
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
	"math"

	v3 "github.com/rmera/mdreport/v3"
)

//ContactMap is the sparse, symmetric boolean adjacency over atom pairs
//of one frame, in COO format: Rows[k],Cols[k] is the kth true entry.
//There is no value array since entries are true-only. Both (i,j) and
//(j,i) are stored, in row-major order, and self-contacts are excluded.
//Indexes are int16 since selections are small (a few thousand atoms at
//most); NewContactMap rejects anything larger.
type ContactMap struct {
	Rows []int16
	Cols []int16
}

//Len returns the number of stored (directed) contacts.
func (C *ContactMap) Len() int {
	return len(C.Rows)
}

//NewContactMap computes the contact map of coords: entry (i,j), i!=j,
//is true iff the euclidean distance between vectors i and j is at most
//threshold.
func NewContactMap(coords *v3.Matrix, threshold float64) (*ContactMap, error) {
	n := coords.NVecs()
	if n > math.MaxInt16 {
		return nil, confErrorf("contact maps are limited to %d atoms, got %d", math.MaxInt16, n)
	}
	cut2 := threshold * threshold
	neigh := make([][]int16, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var d2 float64
			for k := 0; k < 3; k++ {
				d := coords.At(i, k) - coords.At(j, k)
				d2 += d * d
			}
			if d2 <= cut2 {
				neigh[i] = append(neigh[i], int16(j))
				neigh[j] = append(neigh[j], int16(i))
			}
		}
	}
	//The append order above leaves each neighbor list sorted, so the
	//COO arrays come out row-major like a dense scan would produce.
	C := new(ContactMap)
	for i, js := range neigh {
		for _, j := range js {
			C.Rows = append(C.Rows, int16(i))
			C.Cols = append(C.Cols, j)
		}
	}
	return C, nil
}

//FractionOfContacts returns the fraction of the contacts in ref that are
//also present in curr: |curr AND ref| / |ref|. The value is in [0,1].
//An empty reference map yields 0; the reporter constructor rejects
//configurations that could produce one, so this is only a backstop.
func FractionOfContacts(curr, ref *ContactMap) float64 {
	if ref.Len() == 0 {
		return 0
	}
	in := make(map[int32]bool, curr.Len())
	for k := range curr.Rows {
		in[pairKey(curr.Rows[k], curr.Cols[k])] = true
	}
	shared := 0
	for k := range ref.Rows {
		if in[pairKey(ref.Rows[k], ref.Cols[k])] {
			shared++
		}
	}
	return float64(shared) / float64(ref.Len())
}

func pairKey(i, j int16) int32 {
	return int32(i)<<16 | int32(uint16(j))
}
