package hid

import "io"

// LEDState is the keyboard LED state reported by the host.
type LEDState struct {
	NumLock    bool
	CapsLock   bool
	ScrollLock bool
	Compose    bool
	Kana       bool
}

// UnmarshalBinary decodes a 1-byte LED bitmask.
func (st *LEDState) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return io.ErrUnexpectedEOF
	}
	b := data[0]
	st.NumLock = b&LEDNumLock != 0
	st.CapsLock = b&LEDCapsLock != 0
	st.ScrollLock = b&LEDScrollLock != 0
	st.Compose = b&LEDCompose != 0
	st.Kana = b&LEDKana != 0
	return nil
}

// MarshalBinary encodes st into a 1-byte LED bitmask.
func (st LEDState) MarshalBinary() ([]byte, error) {
	return []byte{st.Byte()}, nil
}

// Byte returns the LED bitmask.
func (st LEDState) Byte() uint8 {
	var b uint8
	if st.NumLock {
		b |= LEDNumLock
	}
	if st.CapsLock {
		b |= LEDCapsLock
	}
	if st.ScrollLock {
		b |= LEDScrollLock
	}
	if st.Compose {
		b |= LEDCompose
	}
	if st.Kana {
		b |= LEDKana
	}
	return b
}
