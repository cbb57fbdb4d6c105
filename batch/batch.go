/*
 * batch.go, part of mdreport.
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

//Package batch accumulates per-frame structural descriptors and writes
//full batches to a compressed columnar container, one file per batch.
package batch

import (
	"fmt"

	v3 "github.com/rmera/mdreport/v3"
)

//Slot names in the on-disk container, in the order sections are written.
const (
	SlotContactMap         = "contact_map"
	SlotPointCloud         = "point_cloud"
	SlotRMSD               = "rmsd"
	SlotFractionOfContacts = "fraction_of_contacts"
)

//Fields says which descriptor buffers an Accumulator carries. Disabled
//descriptors get no buffer at all, so the writer can iterate over the
//enabled set generically instead of branching per flag everywhere.
type Fields struct {
	ContactMap         bool
	PointCloud         bool
	RMSD               bool
	FractionOfContacts bool
}

//Slots returns the names of the enabled slots, in container order.
func (F Fields) Slots() []string {
	s := make([]string, 0, 4)
	if F.ContactMap {
		s = append(s, SlotContactMap)
	}
	if F.PointCloud {
		s = append(s, SlotPointCloud)
	}
	if F.RMSD {
		s = append(s, SlotRMSD)
	}
	if F.FractionOfContacts {
		s = append(s, SlotFractionOfContacts)
	}
	return s
}

//Any returns whether at least one field is enabled.
func (F Fields) Any() bool {
	return F.ContactMap || F.PointCloud || F.RMSD || F.FractionOfContacts
}

//Record holds the descriptors of one frame. ContactRows/ContactCols and
//Points must be set exactly when the corresponding field is enabled in
//the receiving Accumulator; RMSD and FractionOfContacts are only read
//when their fields are enabled.
type Record struct {
	ContactRows        []int16
	ContactCols        []int16
	Points             *v3.Matrix
	RMSD               float64
	FractionOfContacts float64
}

//Accumulator owns the per-field buffers of the batch under construction
//and its frame counter. It is not safe for concurrent use; the reporting
//component is its only owner.
type Accumulator struct {
	fields         Fields
	framesPerBatch int
	natoms         int //atoms per point cloud, fixed by the first append
	rows           [][]int16
	cols           [][]int16
	points         []*v3.Matrix
	rmsds          []float64
	fractions      []float64
	nframes        int
}

//NewAccumulator returns an empty Accumulator for the given enabled
//fields. framesPerBatch is the number of frames after which Full
//becomes true; 0 means "never full" and the owner must flush manually.
func NewAccumulator(fields Fields, framesPerBatch int) (*Accumulator, error) {
	if !fields.Any() {
		return nil, fmt.Errorf("batch: no descriptor fields enabled")
	}
	if framesPerBatch < 0 {
		return nil, fmt.Errorf("batch: negative frames per batch: %d", framesPerBatch)
	}
	A := new(Accumulator)
	A.fields = fields
	A.framesPerBatch = framesPerBatch
	A.Reset()
	return A, nil
}

//Fields returns the enabled-fields set of the Accumulator.
func (A *Accumulator) Fields() Fields {
	return A.fields
}

//Len returns the number of frames accumulated since the last reset.
func (A *Accumulator) Len() int {
	return A.nframes
}

//Full returns true iff the accumulator holds exactly the configured
//number of frames per batch. It never becomes true when that number
//is 0.
func (A *Accumulator) Full() bool {
	return A.framesPerBatch > 0 && A.nframes == A.framesPerBatch
}

//Append pushes one frame record into every enabled buffer and
//increments the frame counter. It only fails when the record is
//inconsistent with the enabled fields or with the previous frames,
//which is a contract violation by the caller, not a runtime condition.
func (A *Accumulator) Append(rec *Record) error {
	if err := A.check(rec); err != nil {
		return err
	}
	if A.fields.ContactMap {
		A.rows = append(A.rows, rec.ContactRows)
		A.cols = append(A.cols, rec.ContactCols)
	}
	if A.fields.PointCloud {
		if A.nframes == 0 {
			A.natoms = rec.Points.NVecs()
		}
		A.points = append(A.points, rec.Points)
	}
	if A.fields.RMSD {
		A.rmsds = append(A.rmsds, rec.RMSD)
	}
	if A.fields.FractionOfContacts {
		A.fractions = append(A.fractions, rec.FractionOfContacts)
	}
	A.nframes++
	return nil
}

func (A *Accumulator) check(rec *Record) error {
	if A.fields.ContactMap {
		if rec.ContactRows == nil || rec.ContactCols == nil {
			return fmt.Errorf("batch: contact map enabled but record carries none")
		}
		if len(rec.ContactRows) != len(rec.ContactCols) {
			return fmt.Errorf("batch: mismatched contact row/col lengths: %d, %d",
				len(rec.ContactRows), len(rec.ContactCols))
		}
	} else if rec.ContactRows != nil || rec.ContactCols != nil {
		return fmt.Errorf("batch: contact map disabled but record carries one")
	}
	if A.fields.PointCloud {
		if rec.Points == nil {
			return fmt.Errorf("batch: point cloud enabled but record carries none")
		}
		if A.nframes > 0 && rec.Points.NVecs() != A.natoms {
			return fmt.Errorf("batch: point cloud with %d atoms, want %d",
				rec.Points.NVecs(), A.natoms)
		}
	} else if rec.Points != nil {
		return fmt.Errorf("batch: point cloud disabled but record carries one")
	}
	return nil
}

//Reset clears all buffers and the frame counter back to the empty
//state. The old buffers are dropped, not reused; a flushed batch must
//not be aliased by the next one.
func (A *Accumulator) Reset() {
	A.nframes = 0
	A.natoms = 0
	A.rows = nil
	A.cols = nil
	A.points = nil
	A.rmsds = nil
	A.fractions = nil
	if A.fields.ContactMap {
		A.rows = make([][]int16, 0, A.framesPerBatch)
		A.cols = make([][]int16, 0, A.framesPerBatch)
	}
	if A.fields.PointCloud {
		A.points = make([]*v3.Matrix, 0, A.framesPerBatch)
	}
	if A.fields.RMSD {
		A.rmsds = make([]float64, 0, A.framesPerBatch)
	}
	if A.fields.FractionOfContacts {
		A.fractions = make([]float64, 0, A.framesPerBatch)
	}
}
