/*
 * writer.go, part of mdreport.
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

package batch

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/mdreport/v3"
)

//The container is a zstd-compressed text file: a short key=value header,
//a "** nframes" sentinel, then one "> name" section per enabled slot.
//Coordinates are stored as fixed-precision integers (prec decimals),
//point clouds in [frame, coordinate, atom] order: per frame, one line of
//x values for all atoms, then y, then z. Contact maps are COO: per
//frame, a line of row indexes and a line of column indexes.
const (
	containerPrec = 2
	formatVersion = 1
)

//Write serializes all enabled slots of the accumulated batch into a
//single container at name, as one scoped operation: the data goes to a
//temporary file that is renamed into place on success, so a failed
//flush never leaves a partial container at the final name. The
//accumulator is not reset; that is the caller's call to make.
func Write(name string, A *Accumulator) error {
	if A.Len() == 0 {
		return Error{"refusing to write an empty batch", name, []string{"Write"}, true}
	}
	tmp := name + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return Error{err.Error(), name, []string{"Write"}, true}
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return Error{err.Error(), name, []string{"Write"}, true}
	}
	w := bufio.NewWriter(zw)
	werr := writeSections(w, A)
	if werr == nil {
		werr = w.Flush()
	}
	if err := zw.Close(); werr == nil {
		werr = err
	}
	if err := f.Close(); werr == nil {
		werr = err
	}
	if werr != nil {
		os.Remove(tmp)
		return Error{werr.Error(), name, []string{"Write"}, true}
	}
	if err := os.Rename(tmp, name); err != nil {
		os.Remove(tmp)
		return Error{err.Error(), name, []string{"Write"}, true}
	}
	return nil
}

func writeSections(w *bufio.Writer, A *Accumulator) error {
	fmt.Fprintf(w, "mdd=%d\n", formatVersion)
	fmt.Fprintf(w, "prec=%d\n", containerPrec)
	fmt.Fprintf(w, "atoms=%d\n", A.natoms)
	fmt.Fprintf(w, "slots=%s\n", strings.Join(A.fields.Slots(), ","))
	fmt.Fprintf(w, "** %d\n", A.nframes)
	if A.fields.ContactMap {
		fmt.Fprintf(w, "> %s\n", SlotContactMap)
		for i := 0; i < A.nframes; i++ {
			fmt.Fprintf(w, "# %d %d\n", i, len(A.rows[i]))
			writeInt16Line(w, A.rows[i])
			writeInt16Line(w, A.cols[i])
		}
	}
	if A.fields.PointCloud {
		fmt.Fprintf(w, "> %s\n", SlotPointCloud)
		for i := 0; i < A.nframes; i++ {
			fmt.Fprintf(w, "# %d\n", i)
			p := A.points[i]
			//transposed: one line per coordinate axis, atoms as columns
			for j := 0; j < 3; j++ {
				for k := 0; k < A.natoms; k++ {
					if k > 0 {
						w.WriteByte(' ')
					}
					fmt.Fprintf(w, "%d", fixedPoint(p.At(k, j)))
				}
				w.WriteByte('\n')
			}
		}
	}
	if A.fields.RMSD {
		fmt.Fprintf(w, "> %s\n", SlotRMSD)
		for _, v := range A.rmsds {
			fmt.Fprintf(w, "%.6f\n", v)
		}
	}
	if A.fields.FractionOfContacts {
		fmt.Fprintf(w, "> %s\n", SlotFractionOfContacts)
		for _, v := range A.fractions {
			fmt.Fprintf(w, "%.6f\n", v)
		}
	}
	return nil
}

func writeInt16Line(w *bufio.Writer, vals []int16) {
	for i, v := range vals {
		if i > 0 {
			w.WriteByte(' ')
		}
		fmt.Fprintf(w, "%d", v)
	}
	w.WriteByte('\n')
}

func fixedPoint(v float64) int {
	p := math.Pow(10.0, float64(containerPrec))
	return int(math.RoundToEven(v * p))
}

//Container is a batch read back from disk. Point clouds are returned
//re-assembled as one NVecs x 3 matrix per frame, undoing the transposed
//on-disk layout.
type Container struct {
	Frames             int
	Atoms              int
	Slots              []string
	ContactRows        [][]int16
	ContactCols        [][]int16
	Points             []*v3.Matrix
	RMSD               []float64
	FractionOfContacts []float64
}

//Read parses the container at name. It is the inverse of Write, up to
//the precision lost in the fixed-point coordinate encoding.
func Read(name string) (*Container, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"Read"}, true}
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"Read"}, true}
	}
	defer zr.Close()
	h := bufio.NewReader(zr)
	C := new(Container)
	prec := containerPrec
	for {
		str, err := h.ReadString('\n')
		if err != nil {
			return nil, Error{"can't read header: " + err.Error(), name, []string{"Read"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			fields := strings.Fields(str)
			if len(fields) < 2 {
				return nil, Error{"can't read frame count from " + str, name, []string{"Read"}, true}
			}
			C.Frames, err = strconv.Atoi(fields[1])
			if err != nil {
				return nil, Error{"can't read frame count: " + err.Error(), name, []string{"Read"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, Error{"malformed header line " + str, name, []string{"Read"}, true}
		}
		switch kv[0] {
		case "atoms":
			C.Atoms, err = strconv.Atoi(kv[1])
		case "prec":
			prec, err = strconv.Atoi(kv[1])
		case "slots":
			C.Slots = strings.Split(kv[1], ",")
		case "mdd":
			//version; only one exists so far
		}
		if err != nil {
			return nil, Error{"malformed header line " + str + ": " + err.Error(), name, []string{"Read"}, true}
		}
	}
	for _, slot := range C.Slots {
		if err := C.readSlot(h, slot, prec); err != nil {
			return nil, Error{err.Error(), name, []string{"Read"}, true}
		}
	}
	return C, nil
}

func (C *Container) readSlot(h *bufio.Reader, slot string, prec int) error {
	head, err := h.ReadString('\n')
	if err != nil {
		return fmt.Errorf("missing section for slot %s: %s", slot, err.Error())
	}
	if strings.TrimSpace(head) != "> "+slot {
		return fmt.Errorf("expected section %q, got %q", slot, strings.TrimSpace(head))
	}
	switch slot {
	case SlotContactMap:
		for i := 0; i < C.Frames; i++ {
			if _, err := h.ReadString('\n'); err != nil { //the "# frame npairs" line
				return err
			}
			rows, err := readInt16Line(h)
			if err != nil {
				return err
			}
			cols, err := readInt16Line(h)
			if err != nil {
				return err
			}
			if len(rows) != len(cols) {
				return fmt.Errorf("frame %d: %d rows but %d cols", i, len(rows), len(cols))
			}
			C.ContactRows = append(C.ContactRows, rows)
			C.ContactCols = append(C.ContactCols, cols)
		}
	case SlotPointCloud:
		mult := math.Pow(10.0, float64(prec))
		for i := 0; i < C.Frames; i++ {
			if _, err := h.ReadString('\n'); err != nil {
				return err
			}
			p := v3.Zeros(C.Atoms)
			for j := 0; j < 3; j++ {
				line, err := h.ReadString('\n')
				if err != nil {
					return err
				}
				fields := strings.Fields(line)
				if len(fields) != C.Atoms {
					return fmt.Errorf("frame %d axis %d: %d values, want %d", i, j, len(fields), C.Atoms)
				}
				for k, v := range fields {
					n, err := strconv.Atoi(v)
					if err != nil {
						return err
					}
					p.Set(k, j, float64(n)/mult)
				}
			}
			C.Points = append(C.Points, p)
		}
	case SlotRMSD, SlotFractionOfContacts:
		vals := make([]float64, C.Frames)
		for i := 0; i < C.Frames; i++ {
			line, err := h.ReadString('\n')
			if err != nil {
				return err
			}
			vals[i], err = strconv.ParseFloat(strings.TrimSpace(line), 64)
			if err != nil {
				return err
			}
		}
		if slot == SlotRMSD {
			C.RMSD = vals
		} else {
			C.FractionOfContacts = vals
		}
	default:
		return fmt.Errorf("unknown slot %q", slot)
	}
	return nil
}

func readInt16Line(h *bufio.Reader) ([]int16, error) {
	line, err := h.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	fields := strings.Fields(line)
	vals := make([]int16, len(fields))
	for i, v := range fields {
		n, err := strconv.ParseInt(v, 10, 16)
		if err != nil {
			return nil, err
		}
		vals[i] = int16(n)
	}
	return vals, nil
}

//Error is the general structure for batch container errors. It
//fulfills the Error interface of the root package.
type Error struct {
	message  string
	filename string //the container that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("batch container %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error.
func (E Error) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter the receiver,
	//it should work, since E.deco is a slice, and hence a pointer itself.
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file to which the failing container was associated.
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }
