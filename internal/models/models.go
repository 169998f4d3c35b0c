package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models in the synchronizer.
type Model interface {
	ID() string             // ID returns the unique identifier for this model
	RetrievedAt() time.Time // RetrievedAt returns when this model was fetched from the remote service
	Validate() error        // Validate checks if the model's data is valid and returns an error if not
}

// Kind identifies a catalog entity kind.
type Kind string

const (
	KindTrack    Kind = "track"
	KindArtist   Kind = "artist"
	KindPlaylist Kind = "playlist"
	KindAlbum    Kind = "album"
)

// Valid reports whether k is one of the known catalog kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindTrack, KindArtist, KindPlaylist, KindAlbum:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// ParseKind converts a context type string to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown entity kind: %q", s)
	}
	return k, nil
}
