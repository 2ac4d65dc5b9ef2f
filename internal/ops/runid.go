package ops

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// newRunID builds identifiers like scrape_20250611_a1b2c3d4. The random
// suffix keeps same-day runs distinguishable in audit columns and logs.
func newRunID(prefix string, now time.Time) string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		binary.BigEndian.PutUint32(buf[:], uint32(now.UnixNano()))
	}
	return fmt.Sprintf("%s_%s_%s", prefix, now.UTC().Format("20060102"), hex.EncodeToString(buf[:]))
}

// isoDuration renders an elapsed duration in ISO-8601 form, e.g. PT4.250S.
func isoDuration(d time.Duration) string {
	return fmt.Sprintf("PT%.3fS", d.Seconds())
}
