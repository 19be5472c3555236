package badger

import (
	"fmt"

	"github.com/poiesic/scenedex/core"
)

// Key prefixes for different data types
const (
	videoJobPrefix = "vidjob"
	videoJobIDSeq  = "vidjobseq"
	frameRecPrefix = "frarec"
	textRecPrefix  = "txtrec"
)

// makeVideoJobKey generates a key for a video job by ID.
func makeVideoJobKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", videoJobPrefix, id))
}

// makeFrameKey generates a key for a frame evidence row by ID.
func makeFrameKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", frameRecPrefix, id))
}

// makeTextKey generates a key for a text evidence row by ID.
func makeTextKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", textRecPrefix, id))
}
