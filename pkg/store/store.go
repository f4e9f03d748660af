/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package store archives raw DS housekeeping records in a bbolt database.
// Every source gets its own bucket. Keys are big-endian record indices and
// values are the record bytes as they were received, so reading a record
// decodes it again from the original wire bytes.
package store

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-dshk/pkg/dshk"
	"jinr.ru/greenlab/go-dshk/pkg/log"
)

const (
	BucketPrefix = "source_"
	MetaBucket   = "meta"
)

// SourceInfo describes an archived source
type SourceInfo struct {
	Name    string    `json:"name"`
	Records uint64    `json:"records"`
	Bytes   uint64    `json:"bytes"`
	Updated time.Time `json:"updated"`
}

type Store struct {
	DB *bbolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(MetaBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close ...
func (s *Store) Close() error {
	return s.DB.Close()
}

func BucketName(source string) string {
	return fmt.Sprintf("%s%s", BucketPrefix, source)
}

func indexKey(index uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, index)
	return b
}

func validSource(source string) error {
	if source == "" || strings.ContainsAny(source, "/\x00") {
		return ErrInvalidSource{Source: source}
	}
	return nil
}

// PutRecords appends raw records to a source, creating it if needed, and
// returns the index of the first appended record
func (s *Store) PutRecords(source string, records [][]byte) (uint64, error) {
	if err := validSource(source); err != nil {
		return 0, err
	}
	log.Debug("Archiving %d records: source: %s", len(records), source)
	var first uint64
	if err := s.DB.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketName(source)))
		if err != nil {
			return err
		}
		info, err := getInfo(tx, source)
		if err != nil {
			return err
		}
		first = info.Records
		for i, rec := range records {
			// bbolt keeps a reference to the value until the transaction ends
			value := append([]byte(nil), rec...)
			if err := b.Put(indexKey(first+uint64(i)), value); err != nil {
				return err
			}
			info.Bytes += uint64(len(rec))
		}
		info.Records += uint64(len(records))
		info.Updated = time.Now().UTC()
		return putInfo(tx, info)
	}); err != nil {
		return 0, err
	}
	return first, nil
}

func getInfo(tx *bbolt.Tx, source string) (*SourceInfo, error) {
	data := tx.Bucket([]byte(MetaBucket)).Get([]byte(source))
	if data == nil {
		return &SourceInfo{Name: source}, nil
	}
	info := &SourceInfo{}
	if err := yaml.Unmarshal(data, info); err != nil {
		return nil, err
	}
	return info, nil
}

func putInfo(tx *bbolt.Tx, info *SourceInfo) error {
	data, err := yaml.Marshal(info)
	if err != nil {
		return err
	}
	return tx.Bucket([]byte(MetaBucket)).Put([]byte(info.Name), data)
}

// Sources lists archived sources ordered by name
func (s *Store) Sources() ([]*SourceInfo, error) {
	var sources []*SourceInfo
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(MetaBucket)).ForEach(func(k, v []byte) error {
			info := &SourceInfo{}
			if err := yaml.Unmarshal(v, info); err != nil {
				log.Error("Error while unmarshalling source info %s: %s", k, err)
				return err
			}
			sources = append(sources, info)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return sources, nil
}

// Source returns the description of one source
func (s *Store) Source(source string) (*SourceInfo, error) {
	var info *SourceInfo
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(BucketName(source))) == nil {
			return ErrSourceNotFound{Source: source}
		}
		var err error
		info, err = getInfo(tx, source)
		return err
	}); err != nil {
		return nil, err
	}
	return info, nil
}

// RawRecords returns copies of the archived bytes of a source in index order
func (s *Store) RawRecords(source string) ([][]byte, error) {
	var records [][]byte
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName(source)))
		if b == nil {
			return ErrSourceNotFound{Source: source}
		}
		return b.ForEach(func(_, v []byte) error {
			records = append(records, append([]byte(nil), v...))
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return records, nil
}

// Records decodes every archived record of a source
func (s *Store) Records(source string) ([]*dshk.Record, error) {
	raw, err := s.RawRecords(source)
	if err != nil {
		return nil, err
	}
	records := make([]*dshk.Record, 0, len(raw))
	for i, data := range raw {
		rec, _, err := dshk.DecodeRecord(data)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", source, &dshk.RecordError{Index: i, Err: err})
		}
		records = append(records, rec)
	}
	return records, nil
}

// Record decodes one archived record
func (s *Store) Record(source string, index uint64) (*dshk.Record, error) {
	var data []byte
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName(source)))
		if b == nil {
			return ErrSourceNotFound{Source: source}
		}
		v := b.Get(indexKey(index))
		if v == nil {
			return ErrRecordNotFound{Source: source, Index: index}
		}
		data = append([]byte(nil), v...)
		return nil
	}); err != nil {
		return nil, err
	}
	rec, _, err := dshk.DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", source, &dshk.RecordError{Index: int(index), Err: err})
	}
	return rec, nil
}

// DeleteSource drops a source bucket and its description
func (s *Store) DeleteSource(source string) error {
	log.Debug("Deleting source: %s", source)
	return s.DB.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(BucketName(source))); err != nil {
			if err == bbolt.ErrBucketNotFound {
				return ErrSourceNotFound{Source: source}
			}
			return err
		}
		return tx.Bucket([]byte(MetaBucket)).Delete([]byte(source))
	})
}
