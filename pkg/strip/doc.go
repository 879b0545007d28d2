// Package strip slices an image into fixed-size strips along one axis and
// reassembles them with odd and even strips separated.
//
// # Strips
//
// [Partition] divides a length (image width for [Column], height for [Row])
// into consecutive [Strip] ranges of size step. When the length is not a
// multiple of step, the last strip is narrower and keeps its true size; it
// is never dropped and never padded.
//
// # Odd and Even Groups
//
// Strips are counted from one, so the odd group holds the 1st, 3rd, 5th, ...
// strips (0-based positions 0, 2, 4, ...) and the even group holds the 2nd,
// 4th, 6th, .... When the strip count is odd, the trailing strip belongs to
// the odd group. When there is only one strip, the even group is empty and
// has zero size along the split axis.
//
// # Interleave
//
// [Interleave] writes the odd group followed by the even group into a new
// image of the same dimensions as the input:
//
//	Column, step=1, 4 columns:  [0 1 2 3]  ->  [0 2 | 1 3]
//	Row,    step=1, 4 rows:     [0 1 2 3]  ->  [0 2 | 1 3] (top to bottom)
//
// Every input pixel appears exactly once in the output. [Groups] and [Join]
// expose the two halves separately; Join(Groups(img)) equals Interleave(img).
//
// Row copies for independent bands of the output can run concurrently with
// [WithWorkers]. The result does not depend on the worker count.
package strip
