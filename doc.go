/*
 * doc.go, part of mdreport.
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

/*
Package report samples structural descriptors from a running molecular
dynamics simulation. A Reporter is registered with the host simulation
loop; at a fixed step interval it receives the current positions,
extracts a named atom subset (alpha carbons, typically), and computes
any of: a sparse contact map, the reduced-precision point cloud, the
RMSD against a reference structure after optimal superposition, and the
fraction of the reference's native contacts present in the frame.

Descriptors are accumulated in memory and flushed every FramesPerBatch
frames to a compressed columnar container (one file per batch, see the
batch subpackage), so a crashed or truncated run loses at most the
current batch. The reference and optional periodic-wrapping structures
are plain PDB files, read once at construction.
*/
package report
