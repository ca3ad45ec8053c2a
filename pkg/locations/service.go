// Package locations manages the tree of storage locations (room > bookcase >
// shelf) that book copies are kept in.
package locations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// PathSeparator joins location titles in a full path.
const PathSeparator = " > "

// ErrTooDeep is returned when walking up from a location doesn't reach a root
// within the configured maximum depth.
var ErrTooDeep = errors.New("location tree exceeds max depth")

type RetrieveLocationOptions struct {
	ID *int
}

type ListLocationsOptions struct {
	Limit   *int
	Offset  *int
	OwnerID *int
	IsLeaf  *bool

	includeTotal bool
}

type UpdateLocationOptions struct {
	Columns []string
}

type Service struct {
	db       *bun.DB
	maxDepth int
}

func NewService(db *bun.DB, maxDepth int) *Service {
	return &Service{db, maxDepth}
}

func (svc *Service) CreateLocation(ctx context.Context, location *models.Location) error {
	if err := svc.validateParent(ctx, location); err != nil {
		return err
	}

	now := time.Now()
	if location.CreatedAt.IsZero() {
		location.CreatedAt = now
	}
	location.UpdatedAt = location.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(location).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	location.FullPath, err = svc.FullPath(ctx, location.ID)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveLocation(ctx context.Context, opts RetrieveLocationOptions) (*models.Location, error) {
	location := &models.Location{}

	q := svc.db.
		NewSelect().
		Model(location)

	if opts.ID != nil {
		q = q.Where("l.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Location")
		}
		return nil, errors.WithStack(err)
	}

	location.FullPath, err = svc.FullPath(ctx, location.ID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return location, nil
}

func (svc *Service) ListLocations(ctx context.Context, opts ListLocationsOptions) ([]*models.Location, error) {
	l, _, err := svc.listLocationsWithTotal(ctx, opts)
	return l, errors.WithStack(err)
}

func (svc *Service) ListLocationsWithTotal(ctx context.Context, opts ListLocationsOptions) ([]*models.Location, int, error) {
	opts.includeTotal = true
	return svc.listLocationsWithTotal(ctx, opts)
}

func (svc *Service) listLocationsWithTotal(ctx context.Context, opts ListLocationsOptions) ([]*models.Location, int, error) {
	locations := []*models.Location{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&locations).
		Order("l.owner_id ASC", "l.title ASC", "l.id ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.OwnerID != nil {
		q = q.Where("l.owner_id = ?", *opts.OwnerID)
	}
	if opts.IsLeaf != nil {
		q = q.Where("l.is_leaf = ?", *opts.IsLeaf)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	// Ancestors are looked up once per request instead of once per row.
	cache := map[int]*models.Location{}
	for _, l := range locations {
		cache[l.ID] = l
	}
	lookup := svc.cachedLookup(ctx, cache)
	for _, l := range locations {
		l.FullPath, err = svc.resolvePath(l, lookup)
		if err != nil {
			return nil, 0, errors.WithStack(err)
		}
	}

	return locations, total, nil
}

func (svc *Service) UpdateLocation(ctx context.Context, location *models.Location, opts UpdateLocationOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	for _, c := range opts.Columns {
		if c == "parent_id" {
			if err := svc.validateParent(ctx, location); err != nil {
				return err
			}
			break
		}
	}

	location.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(location).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// DeleteLocation deletes the location and everything below it. Book copies
// stored anywhere in the subtree lose their location.
func (svc *Service) DeleteLocation(ctx context.Context, id int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		ids, err := subtreeIDs(ctx, tx, "id = ?", id)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return errcodes.NotFound("Location")
		}
		return DeleteLocations(ctx, tx, ids)
	})
	return errors.WithStack(err)
}

// DeleteOwnedLocations deletes every location owned by the user, along with
// any descendants other users may have nested under them.
func DeleteOwnedLocations(ctx context.Context, idb bun.IDB, ownerID int) error {
	ids, err := subtreeIDs(ctx, idb, "owner_id = ?", ownerID)
	if err != nil {
		return err
	}
	return DeleteLocations(ctx, idb, ids)
}

// DeleteLocations deletes exactly the given locations and nulls book copy
// references to them.
func DeleteLocations(ctx context.Context, idb bun.IDB, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := idb.NewUpdate().
		Model((*models.BookCopy)(nil)).
		Set("location_id = NULL").
		Where("location_id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = idb.NewDelete().
		Model((*models.Location)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return errors.WithStack(err)
}

func subtreeIDs(ctx context.Context, idb bun.IDB, where string, arg interface{}) ([]int, error) {
	var ids []int
	// UNION drops duplicates, which also stops the recursion on bad data.
	err := idb.NewRaw(`
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM locations WHERE `+where+`
			UNION
			SELECT l.id FROM locations l JOIN subtree s ON l.parent_id = s.id
		)
		SELECT id FROM subtree`, arg).
		Scan(ctx, &ids)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ids, nil
}

// FullPath resolves the location's titles from the root down, joined with
// PathSeparator.
func (svc *Service) FullPath(ctx context.Context, id int) (string, error) {
	start, err := svc.lookup(ctx, id)
	if err != nil {
		return "", err
	}
	return svc.resolvePath(start, func(id int) (*models.Location, error) {
		return svc.lookup(ctx, id)
	})
}

func (svc *Service) resolvePath(start *models.Location, lookup func(id int) (*models.Location, error)) (string, error) {
	titles := []string{start.Title}
	current := start
	for depth := 1; current.ParentID != nil; depth++ {
		if depth >= svc.maxDepth {
			return "", errors.Wrapf(ErrTooDeep, "resolving location %d (max depth %d)", start.ID, svc.maxDepth)
		}
		parent, err := lookup(*current.ParentID)
		if err != nil {
			return "", err
		}
		titles = append(titles, parent.Title)
		current = parent
	}

	for i, j := 0, len(titles)-1; i < j; i, j = i+1, j-1 {
		titles[i], titles[j] = titles[j], titles[i]
	}
	return strings.Join(titles, PathSeparator), nil
}

func (svc *Service) lookup(ctx context.Context, id int) (*models.Location, error) {
	location := &models.Location{}
	err := svc.db.NewSelect().
		Model(location).
		Column("id", "title", "parent_id", "owner_id").
		Where("l.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Location")
		}
		return nil, errors.WithStack(err)
	}
	return location, nil
}

func (svc *Service) cachedLookup(ctx context.Context, cache map[int]*models.Location) func(id int) (*models.Location, error) {
	return func(id int) (*models.Location, error) {
		if l, ok := cache[id]; ok {
			return l, nil
		}
		l, err := svc.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		cache[id] = l
		return l, nil
	}
}

// validateParent makes sure the parent exists, has the same owner, and that
// hanging location under it keeps the tree acyclic and within max depth.
func (svc *Service) validateParent(ctx context.Context, location *models.Location) error {
	if location.ParentID == nil {
		return nil
	}

	parent, err := svc.lookup(ctx, *location.ParentID)
	if err != nil {
		var codeErr *errcodes.Error
		if errors.As(err, &codeErr) {
			return errcodes.FieldValidationError("parent_id", fmt.Sprintf("%q refers to a location that doesn't exist", "parent_id"))
		}
		return err
	}
	if parent.OwnerID != location.OwnerID {
		return errcodes.FieldValidationError("parent_id", fmt.Sprintf("%q must belong to the same owner", "parent_id"))
	}

	current := parent
	for depth := 1; ; depth++ {
		if location.ID != 0 && current.ID == location.ID {
			return errcodes.FieldValidationError("parent_id", fmt.Sprintf("%q would make the location its own ancestor", "parent_id"))
		}
		if depth >= svc.maxDepth {
			return errcodes.FieldValidationError("parent_id", fmt.Sprintf("%q would nest locations deeper than %d levels", "parent_id", svc.maxDepth))
		}
		if current.ParentID == nil {
			return svc.checkSubtreeFits(ctx, location, depth)
		}
		current, err = svc.lookup(ctx, *current.ParentID)
		if err != nil {
			return err
		}
	}
}

// checkSubtreeFits rejects a move that would push the deepest descendant of
// location past max depth, given that the new parent sits parentDepth levels
// from the root.
func (svc *Service) checkSubtreeFits(ctx context.Context, location *models.Location, parentDepth int) error {
	height := 1
	if location.ID != 0 {
		var err error
		height, err = subtreeHeight(ctx, svc.db, location.ID, svc.maxDepth)
		if err != nil {
			return err
		}
	}
	if parentDepth+height > svc.maxDepth {
		return errcodes.FieldValidationError("parent_id", fmt.Sprintf("%q would nest locations deeper than %d levels", "parent_id", svc.maxDepth))
	}
	return nil
}

// subtreeHeight counts the levels from id down to its deepest descendant,
// id itself included. Counting stops once it passes limit.
func subtreeHeight(ctx context.Context, idb bun.IDB, id, limit int) (int, error) {
	var height int
	err := idb.NewRaw(`
		WITH RECURSIVE subtree(id, depth) AS (
			SELECT id, 1 FROM locations WHERE id = ?
			UNION
			SELECT l.id, s.depth + 1 FROM locations l JOIN subtree s ON l.parent_id = s.id
			WHERE s.depth <= ?
		)
		SELECT COALESCE(MAX(depth), 0) FROM subtree`, id, limit).
		Scan(ctx, &height)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return height, nil
}
