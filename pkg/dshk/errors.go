/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package dshk

import (
	"errors"
	"fmt"

	"jinr.ru/greenlab/go-dshk/pkg/layers"
)

const (
	KindTruncated  = "truncated"
	KindIncomplete = "incomplete"
	KindUnknown    = "unknown"
)

// RecordError returned when a record of a buffer can not be decoded.
// Offset is the position of the first byte of the failing record.
type RecordError struct {
	Index  int
	Offset int
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("Error while decoding record %d at offset %d: %s", e.Index, e.Offset, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// IsTruncated tells if a fixed size field of a record did not fit in the buffer
func IsTruncated(err error) bool {
	var truncated layers.ErrTruncated
	return errors.As(err, &truncated)
}

// IsIncomplete tells if the packet length word of a record claimed more bytes than
// the buffer has. It also returns how many more bytes are needed.
func IsIncomplete(err error) (int, bool) {
	var incomplete layers.ErrIncomplete
	if errors.As(err, &incomplete) {
		return incomplete.Needed, true
	}
	return 0, false
}

// ErrorKind names the kind of a decode error, it is used for metrics and API replies
func ErrorKind(err error) string {
	if IsTruncated(err) {
		return KindTruncated
	}
	if _, ok := IsIncomplete(err); ok {
		return KindIncomplete
	}
	return KindUnknown
}
