/*
 * super.go, part of mdreport.
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
	"math"

	v3 "github.com/rmera/mdreport/v3"
	"gonum.org/v1/gonum/mat"
)

//Super superimposes the set of cartesian coordinates given as the rows
//of test on the ones of templa, by least-squares: both sets are centered
//on their geometric centers, the optimal rotation is obtained from the
//SVD of the covariance matrix, and the rotated test is translated onto
//the center of templa. The returned matrix is newly allocated; test is
//not modified. If the optimal orthogonal transformation is a reflection
//(which happens with specular or near-planar sets) the smallest singular
//direction is flipped so a proper rotation is always returned.
func Super(test, templa *v3.Matrix) (*v3.Matrix, error) {
	tsr := test.NVecs()
	tmr := templa.NVecs()
	if tsr != tmr || tsr == 0 {
		return nil, fmt.Errorf("Super: mismatched or empty coordinate sets: %d, %d", tsr, tmr)
	}
	ctest := v3.Zeros(tsr)
	ctest.Copy(test.Dense)
	ctest.SubVec(ctest, test.Mean())
	ctempla := v3.Zeros(tmr)
	ctempla.Copy(templa.Dense)
	meanTempla := templa.Mean()
	ctempla.SubVec(ctempla, meanTempla)
	var cov mat.Dense
	cov.Mul(ctest.Dense.T(), ctempla.Dense)
	var svd mat.SVD
	if !svd.Factorize(&cov, mat.SVDFull) {
		return nil, fmt.Errorf("Super: SVD of the covariance matrix failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	if v3.Det3(&u)*v3.Det3(&v) < 0 {
		//the transformation is a reflection, so we flip the direction
		//with the smallest singular value (the last one, gonum sorts them).
		for i := 0; i < 3; i++ {
			u.Set(i, 2, -u.At(i, 2))
		}
	}
	var rotation mat.Dense
	rotation.Mul(&u, v.T())
	super := v3.Zeros(tsr)
	super.Mul(ctest.Dense, &rotation)
	super.AddVec(super, meanTempla)
	return super, nil
}

//RMSD returns the root of the mean square deviation between the sets of
//cartesian coordinates in test and templa, as given. No superposition is
//performed; use RMSDSuper to remove rigid-body motion first.
func RMSD(test, templa *v3.Matrix) (float64, error) {
	tsr := test.NVecs()
	tmr := templa.NVecs()
	if tsr != tmr || tsr == 0 {
		return 0, fmt.Errorf("RMSD: mismatched or empty coordinate sets: %d, %d", tsr, tmr)
	}
	var dev float64
	for i := 0; i < tsr; i++ {
		for j := 0; j < 3; j++ {
			d := test.At(i, j) - templa.At(i, j)
			dev += d * d
		}
	}
	return math.Sqrt(dev / float64(tsr)), nil
}

//RMSDSuper returns the RMSD between test and templa after optimal
//superposition, so the value reflects only conformational difference,
//not rigid-body motion.
func RMSDSuper(test, templa *v3.Matrix) (float64, error) {
	super, err := Super(test, templa)
	if err != nil {
		return 0, err
	}
	return RMSD(super, templa)
}
