package fasta

import "bufio"

// Write emits one record with its sequence on a single line.
func Write(w *bufio.Writer, id string, seq []byte) error {
	if err := w.WriteByte('>'); err != nil {
		return err
	}
	if _, err := w.WriteString(id); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	if _, err := w.Write(seq); err != nil {
		return err
	}
	return w.WriteByte('\n')
}
