package store

import (
	"context"

	"github.com/rotisserie/eris"
)

// Mappings loads the entity's mapping table as raw id -> main id. Mapping
// existence is the single durable marker that a raw record was promoted.
func (s *Store) Mappings(ctx context.Context, e Entity) (map[int64]int64, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+e.RawMapColumn()+", "+e.MainMapColumn()+" FROM "+e.MappingTable())
	if err != nil {
		return nil, eris.Wrapf(err, "store: load %s", e.MappingTable())
	}
	defer rows.Close()

	out := make(map[int64]int64)
	for rows.Next() {
		var rawID, mainID int64
		if err := rows.Scan(&rawID, &mainID); err != nil {
			return nil, eris.Wrapf(err, "store: scan %s", e.MappingTable())
		}
		out[rawID] = mainID
	}
	return out, rows.Err()
}

// MappedRawIDs returns the raw identities recorded in the entity's mapping
// table.
func (s *Store) MappedRawIDs(ctx context.Context, e Entity) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+e.RawMapColumn()+" FROM "+e.MappingTable())
	if err != nil {
		return nil, eris.Wrapf(err, "store: load %s", e.MappingTable())
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrapf(err, "store: scan %s", e.MappingTable())
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
