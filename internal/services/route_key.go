package services

import (
	"earthwork-route-service/internal/domain"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// RouteKey fingerprints a solve: the raw field cells in input order plus
// the request. Equal keys mean the solver would see the same input; the
// worker count does not change the result and is left out.
func RouteKey(cells []domain.Cell, req PlanRouteRequest) string {
	req.Workers = 0
	d := xxhash.New()

	var buf [24]byte
	for _, c := range cells {
		binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(c.Coordinates.X))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(c.Coordinates.Y))
		binary.LittleEndian.PutUint64(buf[16:], uint64(c.Quantity))
		_, _ = d.Write(buf[:])
	}
	_, _ = fmt.Fprintf(d, "|%+v", req)

	return "route:" + strconv.FormatUint(d.Sum64(), 16)
}
