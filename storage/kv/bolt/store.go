package boltkv

import (
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/trezcool/darasa/core/session"
)

var rootBucket = []byte("sessions")

// Store is a bbolt-backed session.Keeper. Each client id gets a nested
// bucket under the root "sessions" bucket.
type Store struct {
	db *bolt.DB
}

var _ session.Keeper = (*Store)(nil)

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "opening bolt db %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating sessions bucket")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(sid, key string) (string, bool, error) {
	var val string
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		ns := tx.Bucket(rootBucket).Bucket([]byte(sid))
		if ns == nil {
			return nil
		}
		if v := ns.Get([]byte(key)); v != nil {
			val = string(v)
			ok = true
		}
		return nil
	})
	return val, ok, errors.Wrapf(err, "getting %s/%s", sid, key)
}

func (s *Store) Set(sid, key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		ns, err := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte(sid))
		if err != nil {
			return err
		}
		return ns.Put([]byte(key), []byte(value))
	})
	return errors.Wrapf(err, "setting %s/%s", sid, key)
}

// Update writes the whole batch inside a single transaction; either every
// change lands or none do.
func (s *Store) Update(sid string, changes map[string]string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		ns, err := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte(sid))
		if err != nil {
			return err
		}
		for key, value := range changes {
			if value == "" {
				err = ns.Delete([]byte(key))
			} else {
				err = ns.Put([]byte(key), []byte(value))
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrapf(err, "updating %s", sid)
}

func (s *Store) Delete(sid, key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		ns := tx.Bucket(rootBucket).Bucket([]byte(sid))
		if ns == nil {
			return nil
		}
		return ns.Delete([]byte(key))
	})
	return errors.Wrapf(err, "deleting %s/%s", sid, key)
}

func (s *Store) Drop(sid string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(rootBucket)
		if root.Bucket([]byte(sid)) == nil {
			return nil
		}
		return root.DeleteBucket([]byte(sid))
	})
	return errors.Wrapf(err, "dropping %s", sid)
}

func (s *Store) SIDs() ([]string, error) {
	var sids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(rootBucket).ForEach(func(k, v []byte) error {
			if v == nil { // nested buckets only
				sids = append(sids, string(k))
			}
			return nil
		})
	})
	return sids, errors.Wrap(err, "listing session ids")
}
