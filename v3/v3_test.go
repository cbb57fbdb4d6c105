/*
 * v3_test.go, part of mdreport.
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

package v3

import (
	"fmt"
	"math"
	"testing"
)

func TestNewMatrix(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		Te.Fatal(err)
	}
	if A.NVecs() != 2 {
		Te.Errorf("wrong number of vectors: %d", A.NVecs())
	}
	_, err = NewMatrix([]float64{1, 2, 3, 4})
	if err == nil {
		Te.Error("slice with length not divisible by 3 should be rejected")
	}
}

func TestMeanAndSubVec(Te *testing.T) {
	A, _ := NewMatrix([]float64{0, 0, 0, 2, 4, 6})
	m := A.Mean()
	if m.At(0, 0) != 1 || m.At(0, 1) != 2 || m.At(0, 2) != 3 {
		Te.Errorf("wrong geometric center: %v", m)
	}
	B := Zeros(2)
	B.SubVec(A, m)
	c := B.Mean()
	for j := 0; j < 3; j++ {
		if math.Abs(c.At(0, j)) > 1e-12 {
			Te.Errorf("centered set has non-zero center: %v", c)
		}
	}
	B.AddVec(B, m)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if B.At(i, j) != A.At(i, j) {
				Te.Error("AddVec did not undo SubVec")
			}
		}
	}
}

func TestSomeVecs(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 1, 1, 2, 2, 2, 3, 3, 3, 4, 4, 4})
	B := Zeros(2)
	B.SomeVecs(A, []int{3, 1})
	if B.At(0, 0) != 4 || B.At(1, 0) != 2 {
		Te.Errorf("wrong vectors extracted: %v", B)
	}
	err := B.SomeVecsSafe(A, []int{0, 1, 2})
	if err == nil {
		Te.Error("mismatched receiver size should be an error")
	}
	fmt.Println("SomeVecsSafe rejected as expected:", err)
}

func TestMulAliasing(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	rot, _ := NewMatrix([]float64{0, -1, 0, 1, 0, 0, 0, 0, 1})
	A.Mul(A, rot.Dense) //receiver as first argument
	if A.At(0, 1) != -1 || A.At(1, 0) != 1 {
		Te.Errorf("aliased Mul gave wrong result: %v", A)
	}
}

func TestDet3(Te *testing.T) {
	I, _ := NewMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	if Det3(I.Dense) != 1 {
		Te.Error("det(I) != 1")
	}
	R, _ := NewMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, -1}) //a reflection
	if Det3(R.Dense) != -1 {
		Te.Error("det of a reflection should be -1")
	}
}

func TestVecView(Te *testing.T) {
	A := Zeros(3)
	v := A.VecView(1)
	v.Set(0, 2, 42)
	if A.At(1, 2) != 42 {
		Te.Error("views should share the backing data")
	}
}
