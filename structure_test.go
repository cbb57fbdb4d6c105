/*
 * structure_test.go, part of mdreport.
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
	"testing"

	v3 "github.com/rmera/mdreport/v3"
)

func TestReadPDB(Te *testing.T) {
	S, err := ReadPDB("test/ref.pdb")
	if err != nil {
		Te.Fatal(err)
	}
	if S.Len() != 15 || S.Coords.NVecs() != 15 {
		Te.Fatalf("wrong number of atoms: %d", S.Len())
	}
	at := S.Atoms[1]
	if at.Name != "CA" || at.Molname != "ALA" || at.Chain != 'A' || at.Molid != 1 {
		Te.Errorf("wrong atom read: %+v", at)
	}
	if S.HasBox {
		Te.Error("ref.pdb has no CRYST1 record, so no box should be read")
	}
	fmt.Println("read structure with", S.Len(), "atoms")
	if _, err := ReadPDB("test/nonexistent.pdb"); err == nil {
		Te.Error("a missing file should be an error")
	}
}

func TestReadPDBBox(Te *testing.T) {
	S, err := ReadPDB("test/wrap.pdb")
	if err != nil {
		Te.Fatal(err)
	}
	if !S.HasBox {
		Te.Fatal("CRYST1 record not picked up")
	}
	for j := 0; j < 3; j++ {
		if S.Box[j] != 50.0 {
			Te.Errorf("wrong box length %d: %v", j, S.Box[j])
		}
	}
}

func TestSelect(Te *testing.T) {
	S, err := ReadPDB("test/ref.pdb")
	if err != nil {
		Te.Fatal(err)
	}
	cas, err := S.Select("protein and name CA")
	if err != nil {
		Te.Fatal(err)
	}
	want := []int{1, 4, 7, 10, 13}
	if len(cas) != len(want) {
		Te.Fatalf("wrong selection size: %v", cas)
	}
	for i, v := range want {
		if cas[i] != v {
			Te.Errorf("wrong selection: %v", cas)
			break
		}
	}
	mid, err := S.Select("resid 2-4 and name CA")
	if err != nil {
		Te.Fatal(err)
	}
	if len(mid) != 3 || mid[0] != 4 || mid[2] != 10 {
		Te.Errorf("wrong resid range selection: %v", mid)
	}
	all, err := S.Select("all")
	if err != nil || len(all) != 15 {
		Te.Errorf("wrong 'all' selection: %v, %v", all, err)
	}
	W, _ := ReadPDB("test/wrap.pdb")
	b, err := W.Select("chain B")
	if err != nil || len(b) != 2 {
		Te.Errorf("wrong chain selection: %v, %v", b, err)
	}
}

func TestSelectErrors(Te *testing.T) {
	S, err := ReadPDB("test/ref.pdb")
	if err != nil {
		Te.Fatal(err)
	}
	for _, expr := range []string{"", "name", "banana", "name ZZ", "resid 5-2"} {
		if _, err := S.Select(expr); err == nil {
			Te.Errorf("selection %q should fail", expr)
		} else {
			fmt.Printf("selection %q rejected: %v\n", expr, err)
		}
	}
}

func TestWrapper(Te *testing.T) {
	W, err := NewWrapper("test/wrap.pdb", "protein and name CA")
	if err != nil {
		Te.Fatal(err)
	}
	if W.Len() != 7 {
		Te.Fatalf("wrong selection size: %d", W.Len())
	}
	S, _ := ReadPDB("test/wrap.pdb")
	sel, _ := S.Select("protein and name CA")
	frame := v3.Zeros(len(sel))
	frame.SomeVecs(S.Coords, sel)
	wrapped, err := W.Wrap(frame)
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < 7; i++ {
		for j := 0; j < 3; j++ {
			x := wrapped.At(i, j)
			if x < 0 || x >= 50 {
				Te.Errorf("atom %d coord %d outside the box: %v", i, j, x)
			}
		}
	}
	//neighbor distances within a chain survive the re-imaging
	d := 0.0
	for j := 0; j < 3; j++ {
		dd := wrapped.At(0, j) - wrapped.At(1, j)
		d += dd * dd
	}
	if math.Abs(math.Sqrt(d)-3.8) > 1e-6 {
		Te.Errorf("wrapping changed an intra-chain distance: %v", math.Sqrt(d))
	}
	//an atom displaced by exactly one box length maps to the same image
	shifted := v3.Zeros(7)
	shifted.Copy(frame.Dense)
	shifted.Set(6, 0, shifted.At(6, 0)+50)
	wrapped2, err := W.Wrap(shifted)
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < 7; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(wrapped.At(i, j)-wrapped2.At(i, j)) > 1e-6 {
				Te.Errorf("atom %d coord %d differs between images: %v vs %v",
					i, j, wrapped.At(i, j), wrapped2.At(i, j))
			}
		}
	}
	//the input frame must not be modified
	if frame.At(6, 0) != S.Coords.At(sel[6], 0) {
		Te.Error("Wrap modified its input")
	}
	if _, err := W.Wrap(v3.Zeros(3)); err == nil {
		Te.Error("a frame with the wrong atom count should be rejected")
	}
}

func TestWrapperNeedsBox(Te *testing.T) {
	_, err := NewWrapper("test/ref.pdb", "protein and name CA")
	if err == nil {
		Te.Fatal("a wrap structure without CRYST1 should be rejected")
	}
	fmt.Println("boxless wrap structure rejected:", err)
}
