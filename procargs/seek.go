package procargs

import (
	"io"
	"math"
)

// seek64 positions s at the unsigned offset upos. Offsets above MaxInt64
// are reached with relative seeks that never overflow individually.
func seek64(s io.Seeker, upos uint64) error {
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return err
	}
	for upos > math.MaxInt64 {
		if _, err := s.Seek(math.MaxInt64, io.SeekCurrent); err != nil {
			return err
		}
		upos -= math.MaxInt64
	}
	_, err := s.Seek(int64(upos), io.SeekCurrent)
	return err
}
