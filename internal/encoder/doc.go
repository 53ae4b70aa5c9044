// Package encoder defines the external media encoder capability used by the
// export pipeline and provides an FFmpeg-backed implementation.
//
// The capability is a small file-store-plus-execute surface: frames are
// written as indexed PNG input files, one encode run concatenates them by
// filename sequence, and the produced artifact is read back as bytes.
// Encoding the GIF/MP4/MOV containers themselves is delegated entirely to
// FFmpeg and never hand-rolled.
//
// FFmpeg must be installed and available in the system PATH.
package encoder
