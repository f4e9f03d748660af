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

package store

import (
	"fmt"
)

// ErrSourceNotFound returned when there is no archive bucket for a source
type ErrSourceNotFound struct {
	Source string
}

func (e ErrSourceNotFound) Error() string {
	return fmt.Sprintf("Source not found: %s", e.Source)
}

// ErrRecordNotFound returned when a source has no record with the given index
type ErrRecordNotFound struct {
	Source string
	Index  uint64
}

func (e ErrRecordNotFound) Error() string {
	return fmt.Sprintf("Record %d not found in source %s", e.Index, e.Source)
}

// ErrInvalidSource returned for source names that can not be used as bucket names
type ErrInvalidSource struct {
	Source string
}

func (e ErrInvalidSource) Error() string {
	return fmt.Sprintf("Invalid source name: %q", e.Source)
}
