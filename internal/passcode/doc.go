// Package passcode defines the 5-digit passcode value shared by both nodes.
//
// A Passcode is a fixed-size array of raw digit values (0-9), exactly as they
// travel over the link: one byte per digit, no ASCII encoding. Comparison is
// element-wise and all five digits must agree for a match.
//
// Usage:
//
//	pc, err := passcode.Parse("12345")
//	if err != nil {
//	    return err
//	}
//	if pc.Equal(stored) {
//	    // open the door
//	}
package passcode
