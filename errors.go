/*
 * errors.go, part of mdreport.
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

import "fmt"

// Error is the interface for errors that all packages in this library
// implement. The Decorate method allows to add and retrieve info from the
// error without changing its type or wrapping it around something else.
// Each call returns the current "decoration" slice of strings. If passed
// an empty string, it just returns the current value without adding to it.
type Error interface {
	Error() string
	Decorate(string) []string
}

//ConfigurationError reports an invalid reporter configuration: a missing
//or unparseable structure file, an empty atom selection, or a descriptor
//enabled without the reference it requires. It is only produced at
//construction time.
type ConfigurationError struct {
	message string
	deco    []string
}

func (err ConfigurationError) Error() string {
	return fmt.Sprintf("mdreport configuration error: %s", err.message)
}

//Decorate adds new information to the error.
func (err ConfigurationError) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter the receiver,
	//it should work, since err.deco is a slice, and hence a pointer itself.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func confErrorf(format string, a ...interface{}) ConfigurationError {
	return ConfigurationError{message: fmt.Sprintf(format, a...)}
}

//errDecorate asserts that err implements Error and decorates it with the
//caller's name before returning it. It panics on a non-Error error.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}
