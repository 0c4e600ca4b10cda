// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

/*
Package chapter provides the PostgreSQL implementation for chapter and
release data access.

Chapter ordering follows the same discipline as volumes: every write that
touches chapter_order runs through the ordering engine under the novel's
ordering lock. Releases are plain child rows of a chapter with no ordering
of their own.
*/
package chapter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webndb/webndb/internal/ordering"
	"github.com/webndb/webndb/internal/platform/database/schema"
	"github.com/webndb/webndb/internal/platform/dberr"
	"github.com/webndb/webndb/pkg/keyset"
	"github.com/webndb/webndb/pkg/slice"
)

// # PostgreSQL Repository

// chapterRepository implements the [Repository] interface using pgx.
type chapterRepository struct {
	pool   *pgxpool.Pool
	engine *ordering.Engine
}

// NewRepository constructs a PostgreSQL backed chapter store.
func NewRepository(pool *pgxpool.Pool, engine *ordering.Engine) Repository {
	return &chapterRepository{pool: pool, engine: engine}
}

func (repository *chapterRepository) GetChapter(context context.Context, novelID, chapterID int64) (*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2
	`,
		schema.Chapter.ChapterID,
		schema.Chapter.NovelID,
		schema.Chapter.VolumeID,
		schema.Chapter.ChapterOrder,
		schema.Chapter.Table,
		schema.Chapter.NovelID,
		schema.Chapter.ChapterID,
	)

	var c Chapter
	err := repository.pool.QueryRow(context, query, novelID, chapterID).Scan(
		&c.ChapterID, &c.NovelID, &c.VolumeID, &c.ChapterOrder,
	)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres: failed to get chapter: %w", err), "get chapter")
	}

	releases, err := repository.loadReleases(context, novelID, []int64{chapterID})
	if err != nil {
		return nil, err
	}
	c.Releases = releases[chapterID]

	return &c, nil
}

func (repository *chapterRepository) CreateChapter(ctx context.Context, novelID int64, volumeID *int64, desiredOrder *int) (*Chapter, error) {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(ctx)

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s
	`,
		schema.Chapter.Table,
		schema.Chapter.NovelID,
		schema.Chapter.VolumeID,
		schema.Chapter.ChapterOrder,
		schema.Chapter.ChapterID,
	)

	chapterID, assignedOrder, err := repository.engine.Insert(ctx, transaction, novelID, desiredOrder,
		func(ctx context.Context, transaction pgx.Tx, rank int) (int64, error) {
			var id int64
			err := transaction.QueryRow(ctx, insertQuery, novelID, volumeID, rank).Scan(&id)
			if err != nil {
				return 0, dberr.Wrap(fmt.Errorf("postgres: failed to insert chapter: %w", err), "create chapter")
			}
			return id, nil
		})
	if err != nil {
		return nil, err
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres: failed to commit chapter: %w", err), "create chapter")
	}

	return &Chapter{
		ChapterID:    chapterID,
		NovelID:      novelID,
		VolumeID:     volumeID,
		ChapterOrder: assignedOrder,
		Releases:     []Release{},
	}, nil
}

func (repository *chapterRepository) UpdateChapter(context context.Context, c *Chapter, newOrder *int, volume VolumeChange) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	if newOrder != nil && *newOrder != c.ChapterOrder {
		assignedOrder, err := repository.engine.Move(context, transaction, c.NovelID, c.ChapterID, c.ChapterOrder, *newOrder)
		if err != nil {
			return err
		}
		c.ChapterOrder = assignedOrder
	}

	if volume.Set {
		query := fmt.Sprintf(`
			UPDATE %s
			SET %s = $3
			WHERE %s = $1 AND %s = $2
		`,
			schema.Chapter.Table,
			schema.Chapter.VolumeID,
			schema.Chapter.NovelID,
			schema.Chapter.ChapterID,
		)

		tag, err := transaction.Exec(context, query, c.NovelID, c.ChapterID, volume.VolumeID)
		if err != nil {
			return dberr.Wrap(fmt.Errorf("postgres: failed to set chapter volume: %w", err), "update chapter")
		}
		if tag.RowsAffected() == 0 {
			return dberr.ErrNotFound
		}
		c.VolumeID = volume.VolumeID
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to commit chapter update: %w", err), "update chapter")
	}
	return nil
}

func (repository *chapterRepository) ListByNovel(context context.Context, novelID int64, query keyset.Query) (keyset.Page[*Chapter], error) {
	var queryBuilder strings.Builder
	args := []any{novelID}

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, c.%s
		FROM %s c
		WHERE c.%s = $1
	`,
		schema.Chapter.ChapterID,
		schema.Chapter.NovelID,
		schema.Chapter.VolumeID,
		schema.Chapter.ChapterOrder,
		schema.Chapter.Table,
		schema.Chapter.NovelID,
	))

	seek, seekArgs, err := query.SeekPredicate(len(args) + 1)
	if err != nil {
		return keyset.Page[*Chapter]{}, dberr.Wrap(err, "list chapters")
	}
	if seek != "" {
		queryBuilder.WriteString(" AND " + seek)
		args = append(args, seekArgs...)
	}

	queryBuilder.WriteString(" ORDER BY " + query.OrderBy())
	args = append(args, query.Limit())
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return keyset.Page[*Chapter]{}, dberr.Wrap(fmt.Errorf("postgres: failed to list chapters: %w", err), "list chapters")
	}
	defer rows.Close()

	var chapters []*Chapter
	var keys [][]string
	for rows.Next() {
		var c Chapter
		if err := rows.Scan(&c.ChapterID, &c.NovelID, &c.VolumeID, &c.ChapterOrder); err != nil {
			return keyset.Page[*Chapter]{}, dberr.Wrap(fmt.Errorf("postgres: failed to scan chapter: %w", err), "list chapters")
		}
		chapters = append(chapters, &c)
		keys = append(keys, []string{
			strconv.Itoa(c.ChapterOrder),
			strconv.FormatInt(c.ChapterID, 10),
		})
	}
	if err := rows.Err(); err != nil {
		return keyset.Page[*Chapter]{}, dberr.Wrap(fmt.Errorf("postgres: chapter rows failed: %w", err), "list chapters")
	}

	page := keyset.Resolve(chapters, keys, query)

	ids := slice.Map(page.Items, func(c *Chapter) int64 { return c.ChapterID })
	releases, err := repository.loadReleases(context, novelID, ids)
	if err != nil {
		return keyset.Page[*Chapter]{}, err
	}
	for _, c := range page.Items {
		c.Releases = releases[c.ChapterID]
	}

	return page, nil
}

// # Releases

func (repository *chapterRepository) AddRelease(context context.Context, novelID, chapterID int64, release *Release) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`,
		schema.ChRelease.Table,
		schema.ChRelease.ReleaseDate,
		schema.ChRelease.ChapterID,
		schema.ChRelease.NovelID,
		schema.ChRelease.Lang,
		schema.ChRelease.Official,
		schema.ChRelease.Title,
		schema.ChRelease.Latin,
		schema.ChRelease.ReleaseID,
	)

	err := repository.pool.QueryRow(context, query,
		release.ReleaseDate, chapterID, novelID,
		release.Lang, release.Official, release.Title, release.Latin,
	).Scan(&release.ReleaseID)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to insert release: %w", err), "add release")
	}
	return nil
}

func (repository *chapterRepository) DeleteRelease(context context.Context, novelID, releaseID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.ChRelease.Table,
		schema.ChRelease.NovelID,
		schema.ChRelease.ReleaseID,
	)

	tag, err := repository.pool.Exec(context, query, novelID, releaseID)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to delete release: %w", err), "delete release")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *chapterRepository) loadReleases(context context.Context, novelID int64, chapterIDs []int64) (map[int64][]Release, error) {
	if len(chapterIDs) == 0 {
		return map[int64][]Release{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = ANY($2)
		ORDER BY %s
	`,
		schema.ChRelease.ChapterID,
		schema.ChRelease.ReleaseID,
		schema.ChRelease.ReleaseDate,
		schema.ChRelease.Lang,
		schema.ChRelease.Official,
		schema.ChRelease.Title,
		schema.ChRelease.Latin,
		schema.ChRelease.Table,
		schema.ChRelease.NovelID,
		schema.ChRelease.ChapterID,
		schema.ChRelease.ReleaseDate,
	)

	rows, err := repository.pool.Query(context, query, novelID, chapterIDs)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres: failed to load releases: %w", err), "load releases")
	}
	defer rows.Close()

	releases := make(map[int64][]Release)
	for rows.Next() {
		var chapterID int64
		var release Release
		err := rows.Scan(&chapterID, &release.ReleaseID, &release.ReleaseDate,
			&release.Lang, &release.Official, &release.Title, &release.Latin)
		if err != nil {
			return nil, dberr.Wrap(fmt.Errorf("postgres: failed to scan release: %w", err), "load releases")
		}
		releases[chapterID] = append(releases[chapterID], release)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres: release rows failed: %w", err), "load releases")
	}
	return releases, nil
}
