// Package tier defines the resource policy applied to rendering and export
// based on a user's entitlement level.
//
// Two fixed policies exist, free and premium. They control export frame rate,
// character pixel size bounds, the hard cap on sampled frames, and whether a
// watermark is stamped onto exported frames. The table is a process-wide
// constant; nothing in this package reads or writes external state.
package tier
