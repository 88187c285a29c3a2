package remote

import (
	"errors"
	"fmt"

	"github.com/nemanja-m/scatter/internal/shared/proto"
)

var errMisrouted = errors.New("misrouted frame")

func newFrame(src, dst int, values []int64) *proto.Frame {
	return &proto.Frame{Src: int32(src), Dst: int32(dst), Values: values}
}

// route checks that f travels from src to dst.
func route(f *proto.Frame, src, dst int) error {
	if int(f.GetSrc()) != src || int(f.GetDst()) != dst {
		return fmt.Errorf("%w: %d -> %d where %d -> %d was expected", errMisrouted, f.GetSrc(), f.GetDst(), src, dst)
	}
	return nil
}
