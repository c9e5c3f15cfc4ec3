package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"tradejournal/src/model"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestPositionRepositorySearch(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &PositionRepository{db: mockDB}

	openedAt := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	positions := []model.Position{
		{ID: 1, UserID: 1, AssetType: model.AssetTypeStock, Symbol: "AAPL", Side: model.SideLong, OpenedAt: openedAt},
		{ID: 2, UserID: 1, AssetType: model.AssetTypeFutures, Symbol: "ESH25", Side: model.SideLong, OpenedAt: openedAt.Add(24 * time.Hour)},
	}

	positionRows := func(returned ...model.Position) *sqlmock.Rows {
		rows := sqlmock.NewRows([]string{"id", "user_id", "asset_type", "symbol", "side", "opened_at"})
		for _, p := range returned {
			rows.AddRow(p.ID, p.UserID, p.AssetType, p.Symbol, p.Side, p.OpenedAt)
		}
		return rows
	}

	emptyLegRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "position_id"})
	}

	t.Run("filters by user", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "positions" WHERE user_id = $1 ORDER BY opened_at DESC, id DESC`)).
			WithArgs(uint(1)).
			WillReturnRows(positionRows(positions[1], positions[0]))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "position_legs" WHERE "position_legs"."position_id" IN ($1,$2)`)).
			WithArgs(uint(2), uint(1)).
			WillReturnRows(emptyLegRows())

		results, err := repo.Search(context.Background(), PositionSearchOptions{UserID: 1})
		if err != nil {
			t.Fatalf("unexpected error searching positions: %v", err)
		}

		if len(results) != 2 {
			t.Fatalf("expected 2 positions for user 1, got %d", len(results))
		}
		if results[0].Symbol != "ESH25" || results[1].Symbol != "AAPL" {
			t.Fatalf("positions not returned in expected order: %+v", results)
		}
	})

	t.Run("filters by asset type and status", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "positions" WHERE user_id = $1 AND asset_type = $2 AND status = $3 ORDER BY opened_at DESC, id DESC`)).
			WithArgs(uint(1), model.AssetTypeFutures, model.PositionStatusOpen).
			WillReturnRows(positionRows(positions[1]))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "position_legs" WHERE "position_legs"."position_id" = $1`)).
			WithArgs(uint(2)).
			WillReturnRows(emptyLegRows())

		assetType := model.AssetTypeFutures
		status := model.PositionStatusOpen
		results, err := repo.Search(context.Background(), PositionSearchOptions{UserID: 1, AssetType: &assetType, Status: &status})
		if err != nil {
			t.Fatalf("unexpected error searching positions: %v", err)
		}

		if len(results) != 1 || results[0].Symbol != "ESH25" {
			t.Fatalf("unexpected filter result: %+v", results)
		}
	})

	t.Run("applies pagination", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "positions" WHERE user_id = $1 ORDER BY opened_at DESC, id DESC LIMIT $2 OFFSET $3`)).
			WithArgs(uint(1), 1, 1).
			WillReturnRows(positionRows(positions[0]))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "position_legs" WHERE "position_legs"."position_id" = $1`)).
			WithArgs(uint(1)).
			WillReturnRows(emptyLegRows())

		results, err := repo.Search(context.Background(), PositionSearchOptions{UserID: 1, Limit: 1, Offset: 1})
		if err != nil {
			t.Fatalf("unexpected error searching positions: %v", err)
		}

		if len(results) != 1 || results[0].Symbol != "AAPL" {
			t.Fatalf("unexpected paginated result: %+v", results)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestPositionRepositoryFindByID(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &PositionRepository{db: mockDB}

	t.Run("found with legs", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "positions" WHERE "positions"."id" = $1 ORDER BY "positions"."id" LIMIT $2`)).
			WithArgs(1, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "asset_type", "symbol"}).
				AddRow(1, 1, model.AssetTypeOption, "SPY"))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "position_legs" WHERE "position_legs"."position_id" = $1`)).
			WithArgs(uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "position_id", "option_type", "direction", "quantity", "strike_price", "entry_price"}).
				AddRow(10, 1, model.OptionTypeCall, model.SideShort, 1.0, 430.0, 1.25).
				AddRow(11, 1, model.OptionTypePut, model.SideLong, 1.0, 420.0, 0.75))

		position, err := repo.FindByID(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if position == nil {
			t.Fatalf("expected a position")
		}
		if len(position.Legs) != 2 {
			t.Fatalf("expected 2 legs, got %d", len(position.Legs))
		}
	})

	t.Run("not found returns nil, nil", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "positions" WHERE "positions"."id" = $1 ORDER BY "positions"."id" LIMIT $2`)).
			WithArgs(99, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		position, err := repo.FindByID(context.Background(), 99)
		if err != nil {
			t.Fatalf("expected nil error for missing position, got %v", err)
		}
		if position != nil {
			t.Fatalf("expected nil position, got %+v", position)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}
