// Package scanlog reads and writes the plain-text per-second observation
// format shared with the camera-side scanner.
//
// Each line is `<second>,<state>,<payloadText>,<annotation>`: the state is
// the raw marker signal for that second, the payload text is present only
// when a payload symbol decoded, and the annotation carries box geometry as
// `bbox:[x,y,w,h]` for a successful decode or `boundary:[x,y,w,h]` for a
// detected-but-undecoded candidate. Trailing empty fields may be omitted.
// The parser is the replay frame source for the engine; the writer mirrors
// engine observations back into the same grammar.
package scanlog
