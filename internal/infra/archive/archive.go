// Package archive holds the snapshot encoding shared by the SQL archive
// sinks. Archives are write-only: nothing is ever read back into the store.
package archive

import (
	"encoding/json"
	"fmt"

	"airportcore/pkg/domain"
)

// Bucket is one entity collection of a snapshot encoded as JSON.
type Bucket struct {
	Name    string
	Payload []byte
}

// BucketNames lists the archived collections in write order.
var BucketNames = []string{"planes", "locations", "passengers", "flights"}

// Buckets encodes each collection of snap.
func Buckets(snap domain.Snapshot) ([]Bucket, error) {
	out := make([]Bucket, 0, len(BucketNames))
	for _, name := range BucketNames {
		var (
			data []byte
			err  error
		)
		switch name {
		case "planes":
			data, err = json.Marshal(snap.Planes)
		case "locations":
			data, err = json.Marshal(snap.Locations)
		case "passengers":
			data, err = json.Marshal(snap.Passengers)
		case "flights":
			data, err = json.Marshal(snap.Flights)
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out = append(out, Bucket{Name: name, Payload: data})
	}
	return out, nil
}
