package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hdpserv/h5json"

	// Register sqlite driver
	_ "modernc.org/sqlite"
)

// Design metadata keys.
const (
	MetaRoot       = "root"
	MetaAPIVersion = "apiVersion"
)

// DefaultAPIVersion is stamped on documents dumped from stores that predate
// version bookkeeping.
const DefaultAPIVersion = "1.1.0"

const schema = `
CREATE TABLE IF NOT EXISTS objects (
    uuid        TEXT PRIMARY KEY,
    puuid       TEXT NOT NULL DEFAULT '',
    type        TEXT NOT NULL,
    name        TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    layout      TEXT NOT NULL DEFAULT 'N/A',
    rank        INTEGER NOT NULL DEFAULT 0,
    dims        TEXT NOT NULL DEFAULT '{}',
    maxdims     TEXT NOT NULL DEFAULT '{}',
    misc        TEXT NOT NULL DEFAULT '{}',
    data        TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_objects_puuid ON objects(puuid);
CREATE INDEX IF NOT EXISTS idx_objects_type  ON objects(type);

CREATE TABLE IF NOT EXISTS links (
    guuid      TEXT NOT NULL,
    position   INTEGER NOT NULL,
    class      TEXT NOT NULL,
    title      TEXT NOT NULL,
    collection TEXT NOT NULL DEFAULT '',
    target     TEXT NOT NULL DEFAULT '',
    h5path     TEXT NOT NULL DEFAULT '',
    file       TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (guuid, position)
);

CREATE TABLE IF NOT EXISTS design (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

// Store is a SQLite-backed design store holding object records, group links
// and design metadata. It supplies the flat mapping-of-mappings form the
// validators consume and assembles full HDF5/JSON documents on demand.
type Store struct {
	db  *sql.DB
	log *logrus.Entry
}

// Open opens the design store at path. The caller should call Close on the
// returned store.
func Open(path string, log *logrus.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open design store %s: %w", path, err)
	}
	// WAL keeps readers unblocked while the CLI writes; the busy timeout
	// avoids spurious "database is locked" failures.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{db: db, log: log.WithField("component", "storage")}, nil
}

// Init creates tables and indexes if they don't exist. Safe to call multiple
// times.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetMeta stores one design metadata entry (root identifier, api version).
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO design (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Meta reads one design metadata entry, empty when unset.
func (s *Store) Meta(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM design WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

// PutRecord upserts one object record.
func (s *Store) PutRecord(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO objects (uuid, puuid, type, name, description, layout, rank, dims, maxdims, misc, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(uuid) DO UPDATE SET
		   puuid = excluded.puuid, type = excluded.type, name = excluded.name,
		   description = excluded.description, layout = excluded.layout, rank = excluded.rank,
		   dims = excluded.dims, maxdims = excluded.maxdims, misc = excluded.misc, data = excluded.data`,
		rec.UUID, rec.ParentUUID, rec.Type, rec.Name, rec.Description,
		rec.Layout, rec.Rank, rec.Dims, rec.Maxdims, rec.Misc, rec.Data)
	if err != nil {
		return fmt.Errorf("put record %s: %w", rec.UUID, err)
	}
	return nil
}

// GetRecord reads one object record by identifier.
func (s *Store) GetRecord(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := s.db.QueryRowContext(ctx,
		`SELECT uuid, puuid, type, name, description, layout, rank, dims, maxdims, misc, data
		 FROM objects WHERE uuid = ?`, id).
		Scan(&rec.UUID, &rec.ParentUUID, &rec.Type, &rec.Name, &rec.Description,
			&rec.Layout, &rec.Rank, &rec.Dims, &rec.Maxdims, &rec.Misc, &rec.Data)
	if err != nil {
		return Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return rec, nil
}

// Collection lists the identifiers of all objects of one type in insertion
// order.
func (s *Store) Collection(ctx context.Context, otype string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uuid FROM objects WHERE type = ? ORDER BY rowid`, otype)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Children lists the records whose parent is the given identifier, in
// insertion order. Used to collect the inline attributes of an object.
func (s *Store) Children(ctx context.Context, pid, otype string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uuid, puuid, type, name, description, layout, rank, dims, maxdims, misc, data
		 FROM objects WHERE puuid = ? AND type = ? ORDER BY rowid`, pid, otype)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.UUID, &rec.ParentUUID, &rec.Type, &rec.Name, &rec.Description,
			&rec.Layout, &rec.Rank, &rec.Dims, &rec.Maxdims, &rec.Misc, &rec.Data); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// PutLinks replaces the ordered link list of a group.
func (s *Store) PutLinks(ctx context.Context, gid string, links []h5json.Link) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE guuid = ?`, gid); err != nil {
		return err
	}
	for i, l := range links {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO links (guuid, position, class, title, collection, target, h5path, file)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			gid, i, string(l.Class), l.Title, l.Collection, l.ID, l.H5Path, l.File); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Links reads the ordered link list of a group.
func (s *Store) Links(ctx context.Context, gid string) ([]h5json.Link, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT class, title, collection, target, h5path, file
		 FROM links WHERE guuid = ? ORDER BY position`, gid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var links []h5json.Link
	for rows.Next() {
		var l h5json.Link
		var cls string
		if err := rows.Scan(&cls, &l.Title, &l.Collection, &l.ID, &l.H5Path, &l.File); err != nil {
			return nil, err
		}
		l.Class = h5json.LinkClass(cls)
		links = append(links, l)
	}
	return links, rows.Err()
}

// Import stores a whole document: design metadata, one record per object,
// inline attributes as child records, and group link lists. Inline
// attributes get fresh identifiers since the document form does not carry
// any for them.
func (s *Store) Import(ctx context.Context, doc *h5json.Document) error {
	if err := s.SetMeta(ctx, MetaRoot, doc.Root); err != nil {
		return err
	}
	version := doc.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	if err := s.SetMeta(ctx, MetaAPIVersion, version); err != nil {
		return err
	}

	for otype, objs := range map[string]map[string]h5json.Object{
		h5json.TypeGroup:    doc.Groups,
		h5json.TypeDataset:  doc.Datasets,
		h5json.TypeDatatype: doc.Datatypes,
	} {
		for id, obj := range objs {
			rec, err := ToRecord(otype, obj)
			if err != nil {
				return err
			}
			rec.UUID = id
			if err := s.PutRecord(ctx, rec); err != nil {
				return err
			}
			if err := s.importAttributes(ctx, id, obj); err != nil {
				return err
			}
			if otype != h5json.TypeGroup {
				continue
			}
			links, err := documentLinks(obj)
			if err != nil {
				return err
			}
			if err := s.PutLinks(ctx, id, links); err != nil {
				return err
			}
		}
	}
	s.log.WithField("root", doc.Root).Info("document imported")
	return nil
}

func (s *Store) importAttributes(ctx context.Context, pid string, obj h5json.Object) error {
	attrs, ok := obj["attributes"].([]any)
	if !ok {
		return nil
	}
	for _, av := range attrs {
		attr, ok := av.(map[string]any)
		if !ok {
			continue
		}
		rec, err := ToRecord(h5json.TypeAttribute, attr)
		if err != nil {
			return err
		}
		rec.UUID = uuid.NewString()
		rec.ParentUUID = pid
		if err := s.PutRecord(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func documentLinks(obj h5json.Object) ([]h5json.Link, error) {
	raw, ok := obj["links"].([]any)
	if !ok {
		return nil, nil
	}
	links := make([]h5json.Link, 0, len(raw))
	for _, lv := range raw {
		l, ok := lv.(map[string]any)
		if !ok {
			continue
		}
		var link h5json.Link
		cls, _ := l["class"].(string)
		link.Class = h5json.LinkClass(cls)
		link.Title, _ = l["title"].(string)
		link.Collection, _ = l["collection"].(string)
		link.ID, _ = l["id"].(string)
		link.H5Path, _ = l["h5path"].(string)
		link.File, _ = l["file"].(string)
		links = append(links, link)
	}
	return links, nil
}

// Dump assembles the full HDF5/JSON document for the stored design: root
// first, then every collection, with inline attributes and group links
// restored in declaration order.
func (s *Store) Dump(ctx context.Context) (*h5json.Document, error) {
	root, err := s.Meta(ctx, MetaRoot)
	if err != nil {
		return nil, err
	}
	if root == "" {
		return nil, fmt.Errorf("design store has no root group")
	}
	version, err := s.Meta(ctx, MetaAPIVersion)
	if err != nil {
		return nil, err
	}
	if version == "" {
		version = DefaultAPIVersion
	}

	doc := &h5json.Document{APIVersion: version, Root: root}
	for _, otype := range []string{h5json.TypeGroup, h5json.TypeDataset, h5json.TypeDatatype} {
		ids, err := s.Collection(ctx, otype)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			continue
		}
		objs := make(map[string]h5json.Object, len(ids))
		for _, id := range ids {
			obj, err := s.describe(ctx, id, otype)
			if err != nil {
				return nil, err
			}
			objs[id] = obj
		}
		switch otype {
		case h5json.TypeGroup:
			doc.Groups = objs
		case h5json.TypeDataset:
			doc.Datasets = objs
		case h5json.TypeDatatype:
			doc.Datatypes = objs
		}
	}
	s.log.WithField("root", root).Debug("document dumped")
	return doc, nil
}

func (s *Store) describe(ctx context.Context, id, otype string) (h5json.Object, error) {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	obj, err := ToDescription(rec)
	if err != nil {
		return nil, err
	}
	// The document form carries identity in the collection key, not inline.
	delete(obj, "_objtype")
	delete(obj, "_pid")
	delete(obj, "id")

	attrRecs, err := s.Children(ctx, id, h5json.TypeAttribute)
	if err != nil {
		return nil, err
	}
	if len(attrRecs) > 0 {
		attrs := make([]any, 0, len(attrRecs))
		for _, ar := range attrRecs {
			attr, err := ToDescription(ar)
			if err != nil {
				return nil, err
			}
			delete(attr, "_objtype")
			delete(attr, "_pid")
			delete(attr, "id")
			attrs = append(attrs, map[string]any(attr))
		}
		obj["attributes"] = attrs
	}

	if otype == h5json.TypeGroup {
		links, err := s.Links(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(links) > 0 {
			raw := make([]any, 0, len(links))
			for _, l := range links {
				entry := map[string]any{"class": string(l.Class), "title": l.Title}
				switch l.Class {
				case h5json.LinkHard:
					entry["collection"] = l.Collection
					entry["id"] = l.ID
				case h5json.LinkExternal:
					entry["h5path"] = l.H5Path
					entry["file"] = l.File
				default:
					entry["h5path"] = l.H5Path
				}
				raw = append(raw, entry)
			}
			obj["links"] = raw
		}
	}
	return obj, nil
}
