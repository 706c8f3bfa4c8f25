// Package compression archives and restores SimpleFS disk images for the
// export/import commands in cmd/sfssh.
//
// A SimpleFS device is broken up into fixed-size 4096-byte blocks. The
// emptier an image is, the more blocks consisting of entirely null bytes
// there will be. This means a mostly-unused image is mostly dead space that
// doesn't need to be stored at full size in an archive.
//
// CompressDisk and DecompressToDisk run-length encode the raw block stream
// first, then gzip the result. An IBM 8" image of 256,256 bytes can be
// compressed to 3,009 bytes with only run-length encoding (98.8%).
// Compressing this with gzip results in a final size of 67 bytes -- a
// compression ratio of 99.97%.
//
// There are a variety of run-length encodings; this document refers strictly to
// the algorithm used by the Microsoft BMP file format, also known as RLE8. A
// brief explanation: if a byte B occurs N times where N >= 2, B is written twice,
// followed by a third (unsigned) byte indicating how many additional times B
// occurred. For example:
//
// 		WXXXXXXXXXXXXXXXYZZ
//		W XX 13 Y ZZ 0
//
// This scheme lets us represent runs of up to 257 bytes with three bytes. For
// runs longer than 257 bytes, they are treated as separate runs. For example,
// a run of 300 "X" is represented as `XX 255 XX 41`. Unfortunately, using a byte
// as its own escape sequence means that occurrences of the same byte exactly
// twice are stored as three bytes: the two bytes followed by a null byte
// indicating no further repetition.

package compression
