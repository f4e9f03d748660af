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

package layers

import (
	"fmt"
)

// ErrTruncated returned when there are fewer bytes left than a fixed size field requires
type ErrTruncated struct {
	What string
	Need int
	Have int
}

func (e ErrTruncated) Error() string {
	return fmt.Sprintf("Truncated %s: need %d bytes, have %d", e.What, e.Need, e.Have)
}

// ErrIncomplete returned when the packet length word claims more bytes than
// there are after the primary header. Needed is the shortfall in bytes.
type ErrIncomplete struct {
	Needed int
}

func (e ErrIncomplete) Error() string {
	return fmt.Sprintf("Incomplete CCSDS packet: %d more bytes needed", e.Needed)
}
