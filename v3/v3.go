/*
 * v3.go, part of mdreport.
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

//Package v3 implements a set of vectors in 3D space, backed by gonum.
//Within the package it is understood that a "vector" is a row vector, i.e.
//the cartesian coordinates of one point in 3D space, and a Matrix is an
//ordered set of such points.
package v3

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Note: Most functions here panic instead of returning errors. These are
//"fundamental" operations; if the shapes don't match the program is
//way-most likely wrong and should crash.

//Matrix is a set of vectors in 3D space, one per row.
type Matrix struct {
	*mat.Dense
}

//Matrix2Dense returns the gonum Dense underlying A.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

//Dense2Matrix wraps a gonum Dense into a Matrix. The Dense must have
//3 columns, or the first use of the Matrix will panic.
func Dense2Matrix(A *mat.Dense) *Matrix {
	return &Matrix{A}
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 {
		return nil, fmt.Errorf("v3: input slice length %d not divisible by %d", l, cols)
	}
	return &Matrix{mat.NewDense(rows, cols, data)}, nil
}

//Zeros returns a zero-filled Matrix with vecs vectors.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	return &Matrix{mat.NewDense(vecs, cols, make([]float64, cols*vecs))}
}

//NVecs returns the number of vectors in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

//VecView returns a view of the ith vector of F. Changes in the view are
//reflected in F and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

//View returns a view of F starting from i,j and spanning r rows and
//c columns. Changes in the view are reflected in F and vice-versa.
func (F *Matrix) View(i, j, r, c int) *Matrix {
	ret := F.Dense.Slice(i, i+r, j, j+c).(*mat.Dense)
	return &Matrix{ret}
}

//Mul wraps mat.Dense.Mul to take care of the case when one of the
//arguments is also the receiver. Since the receiver is a Matrix, the
//gonum function would compare A (mat.Dense) against F (Matrix) and
//not know that internally F.Dense==A.
func (F *Matrix) Mul(A, B mat.Matrix) {
	if F == A {
		A := A.(*Matrix)
		F.Dense.Mul(A.Dense, B)
	} else if F == B {
		B := B.(*Matrix)
		F.Dense.Mul(A, B.Dense)
	} else {
		F.Dense.Mul(A, B)
	}
}

//SwapVecs swaps the vectors i and j of F.
func (F *Matrix) SwapVecs(i, j int) {
	if i >= F.NVecs() || j >= F.NVecs() {
		panic(ErrIndexOutOfRange)
	}
	for k := 0; k < 3; k++ {
		vi := F.At(i, k)
		F.Set(i, k, F.At(j, k))
		F.Set(j, k, vi)
	}
}

//SomeVecs puts in F the vectors of A with the indexes given in clist,
//in the order of clist. F must have exactly len(clist) vectors.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	ar, ac := A.Dims()
	fr, fc := F.Dims()
	if ac != fc || fr != len(clist) || ar < len(clist) {
		panic(mat.ErrShape)
	}
	for key, val := range clist {
		for j := 0; j < ac; j++ {
			F.Set(key, j, A.At(val, j))
		}
	}
}

//SomeVecsSafe is as SomeVecs but returns an error instead of panicking.
func (F *Matrix) SomeVecsSafe(A *Matrix, clist []int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("v3: SomeVecs: %s", e.Error())
				return
			}
			panic(r)
		}
	}()
	F.SomeVecs(A, clist)
	return err
}

//AddVec adds the 1-row matrix vec to each vector of A, putting the
//result on the receiver. Panics if shapes are mismatched.
func (F *Matrix) AddVec(A, vec *Matrix) {
	ar, ac := A.Dims()
	rr, rc := vec.Dims()
	fr, fc := F.Dims()
	if ac != rc || rr != 1 || ac != fc || ar != fr {
		panic(mat.ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)+vec.At(0, j))
		}
	}
}

//SubVec subtracts the 1-row matrix vec from each vector of A, putting
//the result on the receiver. Panics if shapes are mismatched.
func (F *Matrix) SubVec(A, vec *Matrix) {
	ar, ac := A.Dims()
	rr, rc := vec.Dims()
	fr, fc := F.Dims()
	if ac != rc || rr != 1 || ac != fc || ar != fr {
		panic(mat.ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)-vec.At(0, j))
		}
	}
}

//Mean returns a new 1-row Matrix with the geometric center of the
//vectors in F.
func (F *Matrix) Mean() *Matrix {
	r := F.NVecs()
	if r == 0 {
		panic(ErrNotEnoughElements)
	}
	m := Zeros(1)
	for i := 0; i < r; i++ {
		for j := 0; j < 3; j++ {
			m.Set(0, j, m.At(0, j)+F.At(i, j))
		}
	}
	m.Scale(1.0/float64(r), m.Dense)
	return m
}

//String returns a neat string representation of a Matrix.
func (F *Matrix) String() string {
	r, _ := F.Dims()
	v := make([]string, r+2)
	v[0] = "\n["
	v[len(v)-1] = " ]"
	for i := 0; i < r; i++ {
		v[i+1] = fmt.Sprintf(" %6.2f %6.2f %6.2f\n", F.At(i, 0), F.At(i, 1), F.At(i, 2))
	}
	v[len(v)-2] = strings.TrimSuffix(v[len(v)-2], "\n")
	return strings.Join(v, "")
}

//Det3 returns the determinant of a 3x3 matrix. Panics if the matrix is
//not 3x3.
func Det3(A mat.Matrix) float64 {
	r, c := A.Dims()
	if r != 3 || c != 3 {
		panic(ErrDeterminant)
	}
	return (A.At(0, 0)*(A.At(1, 1)*A.At(2, 2)-A.At(2, 1)*A.At(1, 2)) -
		A.At(1, 0)*(A.At(0, 1)*A.At(2, 2)-A.At(2, 1)*A.At(0, 2)) +
		A.At(2, 0)*(A.At(0, 1)*A.At(1, 2)-A.At(1, 1)*A.At(0, 2)))
}

//PanicMsg is a message used for panics. It satisfies the error
//interface, but for returned errors use the Error types of the
//calling packages.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix      = PanicMsg("mdreport/v3: A Matrix should have 3 columns")
	ErrNotEnoughElements = PanicMsg("mdreport/v3: not enough elements in Matrix")
	ErrDeterminant       = PanicMsg("mdreport/v3: determinants are only available for 3x3 matrices")
	ErrIndexOutOfRange   = PanicMsg("mdreport/v3: index out of range")
)
