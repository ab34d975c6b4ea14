package kvstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// firestorePrefixEnd is the highest code point Firestore string ranges are
// usually closed with.
const firestorePrefixEnd = "\uf8ff"

// FirestoreStore implements Store on one Firestore collection. Document IDs
// are the hex-encoded key (keys may contain characters Firestore forbids in
// IDs); the raw key is kept in a field so prefix scans are range queries.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore wraps an initialized client
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection}
}

type firestoreDoc struct {
	Key   string `firestore:"key"`
	Value []byte `firestore:"value"`
}

func (s *FirestoreStore) doc(key string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(hex.EncodeToString([]byte(key)))
}

func (s *FirestoreStore) Get(ctx context.Context, key string) ([]byte, error) {
	snap, err := s.doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore get %s: %w", key, err)
	}
	var d firestoreDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("firestore decode %s: %w", key, err)
	}
	return d.Value, nil
}

// Set overwrites the whole document, which Firestore applies atomically.
func (s *FirestoreStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.doc(key).Set(ctx, firestoreDoc{Key: key, Value: value}); err != nil {
		return fmt.Errorf("firestore set %s: %w", key, err)
	}
	return nil
}

func (s *FirestoreStore) ScanPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	q := s.client.Collection(s.collection).
		Where("key", ">=", prefix).
		Where("key", "<", prefix+firestorePrefixEnd)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var entries []Entry
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore scan %s: %w", prefix, err)
		}
		var d firestoreDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, fmt.Errorf("firestore decode %s: %w", snap.Ref.ID, err)
		}
		entries = append(entries, Entry{Key: d.Key, Value: d.Value})
	}
	return entries, nil
}

// Close is a no-op; the client is owned by the caller.
func (s *FirestoreStore) Close() error {
	return nil
}
