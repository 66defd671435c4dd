// Package mts encodes tuning tables as MIDI Tuning Standard system exclusive
// messages. Messages are built without the F0/F7 framing; the gomidi writers
// add it when sending.
package mts

import (
	"math"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/writer"

	"github.com/jangler/mostune/tuning"
)

const (
	// AllDevices addresses every receiver.
	AllDevices = 0x7f

	nameLength        = 16
	maxNotesPerChange = 127
	fractionSteps     = 1 << 14
)

// Table is anything that can report a full note table.
type Table interface {
	Frequencies() [tuning.NumNotes]float32
}

// EncodeFrequency returns the three-byte MTS form of a frequency: the
// equal-tempered note at or below it and the 14-bit fraction of a semitone
// above that note. Frequencies outside the representable range are clamped.
func EncodeFrequency(f float64) [3]byte {
	n := 69 + 12*math.Log2(f/440)
	if math.IsNaN(n) || n < 0 {
		n = 0
	}
	note := math.Floor(n)
	frac := math.Round((n - note) * fractionSteps)
	if frac >= fractionSteps {
		note++
		frac = 0
	}
	if note > 127 {
		note, frac = 127, fractionSteps-1
	}
	if note == 127 && frac == fractionSteps-1 {
		// 7f 7f 7f means "no change"
		frac--
	}
	return [3]byte{byte(note), byte(int(frac) >> 7), byte(int(frac) & 0x7f)}
}

// DecodeFrequency is the inverse of EncodeFrequency.
func DecodeFrequency(b [3]byte) float64 {
	frac := float64(int(b[1])<<7|int(b[2])) / fractionSteps
	return 440 * math.Exp2((float64(b[0])+frac-69)/12)
}

// BulkDump returns a non-realtime bulk tuning dump of every note.
func BulkDump(device, program byte, name string, freqs [tuning.NumNotes]float32) []byte {
	msg := make([]byte, 0, 5+nameLength+3*tuning.NumNotes+1)
	msg = append(msg, 0x7e, device&0x7f, 0x08, 0x01, program&0x7f)
	msg = append(msg, encodeName(name)...)
	for _, f := range freqs {
		b := EncodeFrequency(float64(f))
		msg = append(msg, b[:]...)
	}
	return append(msg, checksum(msg))
}

// NoteChange returns realtime single-note tuning changes for the given notes,
// split into as many messages as the per-message limit requires.
func NoteChange(device, program byte, notes []int, freqs [tuning.NumNotes]float32) [][]byte {
	var msgs [][]byte
	for len(notes) > 0 {
		n := min(len(notes), maxNotesPerChange)
		msg := make([]byte, 0, 6+4*n)
		msg = append(msg, 0x7f, device&0x7f, 0x08, 0x02, program&0x7f, byte(n))
		for _, key := range notes[:n] {
			b := EncodeFrequency(float64(freqs[key]))
			msg = append(msg, byte(key), b[0], b[1], b[2])
		}
		msgs = append(msgs, msg)
		notes = notes[n:]
	}
	return msgs
}

// Send writes each message as a sysex.
func Send(wr writer.ChannelWriter, msgs ...[]byte) error {
	for _, msg := range msgs {
		if err := writer.SysEx(wr, msg); err != nil {
			return errors.Wrap(err, "sending tuning sysex")
		}
	}
	return nil
}

// SendTable sends a bulk dump of the table to every device.
func SendTable(wr writer.ChannelWriter, name string, t Table) error {
	return Send(wr, BulkDump(AllDevices, 0, name, t.Frequencies()))
}

// WriteSMF saves a single-track standard MIDI file holding a bulk dump of the
// table.
func WriteSMF(path, name string, t Table) error {
	err := writer.WriteSMF(path, 1, func(wr *writer.SMF) error {
		if err := writer.TrackSequenceName(wr, name); err != nil {
			return err
		}
		if err := SendTable(wr, name, t); err != nil {
			return err
		}
		return writer.EndOfTrack(wr)
	})
	return errors.Wrapf(err, "writing %s", path)
}

// fixed-width printable ASCII, padded with spaces
func encodeName(name string) []byte {
	b := make([]byte, nameLength)
	for i := range b {
		b[i] = ' '
		if i < len(name) && name[i] >= 0x20 && name[i] < 0x7f {
			b[i] = name[i]
		}
	}
	return b
}

// XOR of everything after F0, masked to seven bits
func checksum(msg []byte) byte {
	var sum byte
	for _, b := range msg {
		sum ^= b
	}
	return sum & 0x7f
}
