package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/courierpwa/courier-ops/internal/core/domain"
)

const collectionWallets = "wallets"

// WalletRepository stores one cached balance per staff member, keyed by staff id.
type WalletRepository struct {
	collection
}

func NewWalletRepository(db *mongo.Database, timeout time.Duration) *WalletRepository {
	return &WalletRepository{collection: newCollection(db, collectionWallets, timeout)}
}

type mongoWallet struct {
	StaffID   string               `bson:"_id"`
	Balance   primitive.Decimal128 `bson:"balance"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

func (m *mongoWallet) toDomain() *domain.Wallet {
	return &domain.Wallet{
		StaffID:   m.StaffID,
		Balance:   fromDecimal128(m.Balance),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func (r *WalletRepository) Get(ctx context.Context, staffID string) (*domain.Wallet, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc mongoWallet
	if err := r.col.FindOne(ctx, bson.M{"_id": staffID}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, fmt.Errorf("find wallet: %w", err)
	}
	return doc.toDomain(), nil
}

// Put upserts the cached wallet.
func (r *WalletRepository) Put(ctx context.Context, w *domain.Wallet) error {
	balance, err := toDecimal128(w.Balance)
	if err != nil {
		return err
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc := mongoWallet{StaffID: w.StaffID, Balance: balance, UpdatedAt: w.UpdatedAt}
	_, err = r.col.ReplaceOne(ctx, bson.M{"_id": w.StaffID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert wallet: %w", err)
	}
	return nil
}

func (r *WalletRepository) List(ctx context.Context) ([]*domain.Wallet, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find wallets: %w", err)
	}
	var docs []mongoWallet
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode wallets: %w", err)
	}
	out := make([]*domain.Wallet, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}
