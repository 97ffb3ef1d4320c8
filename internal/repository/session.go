package repository

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/repository/dao"
)

var (
	ErrSessionNotFound  = dao.ErrSessionNotFound
	ErrSessionKeyExists = dao.ErrSessionKeyExists
	ErrSealedKeyInvalid = errors.New("sealed session key cannot be opened")
)

const nonceSize = 24

type SessionDAO interface {
	Insert(ctx context.Context, session dao.Session) (dao.Session, error)
	FindByID(ctx context.Context, id string) (dao.Session, error)
	Update(ctx context.Context, session dao.Session) (dao.Session, error)
	DeleteStale(ctx context.Context, status string, before time.Time) (int64, error)
}

// SessionRepository stores sessions with their function-call secret key
// sealed by a key derived from the configured session secret.
type SessionRepository struct {
	dao SessionDAO
	key [32]byte
}

func NewSessionRepository(dao SessionDAO, secret string) *SessionRepository {
	return &SessionRepository{
		dao: dao,
		key: sha256.Sum256([]byte(secret)),
	}
}

func (r *SessionRepository) Create(ctx context.Context, session domain.Session) (domain.Session, error) {
	row, err := r.domainToDAO(session)
	if err != nil {
		return domain.Session{}, err
	}

	created, err := r.dao.Insert(ctx, row)
	if err != nil {
		return domain.Session{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created)
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (domain.Session, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Session{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found)
}

func (r *SessionRepository) Update(ctx context.Context, session domain.Session) (domain.Session, error) {
	row, err := r.domainToDAO(session)
	if err != nil {
		return domain.Session{}, err
	}

	updated, err := r.dao.Update(ctx, row)
	if err != nil {
		return domain.Session{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated)
}

// PurgePending deletes sign-ins that were started before the cutoff and
// never completed.
func (r *SessionRepository) PurgePending(ctx context.Context, before time.Time) (int64, error) {
	n, err := r.dao.DeleteStale(ctx, string(domain.SessionPending), before)
	if err != nil {
		return 0, fmt.Errorf("r.dao.DeleteStale -> %w", err)
	}

	return n, nil
}

func (r *SessionRepository) seal(secret string) ([]byte, error) {
	if secret == "" {
		return []byte{}, nil
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("rand.Read -> %w", err)
	}

	return secretbox.Seal(nonce[:], []byte(secret), &nonce, &r.key), nil
}

func (r *SessionRepository) open(sealed []byte) (string, error) {
	if len(sealed) == 0 {
		return "", nil
	}
	if len(sealed) < nonceSize {
		return "", ErrSealedKeyInvalid
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &r.key)
	if !ok {
		return "", ErrSealedKeyInvalid
	}

	return string(plain), nil
}

func (r *SessionRepository) domainToDAO(s domain.Session) (dao.Session, error) {
	sealed, err := r.seal(s.SecretKey)
	if err != nil {
		return dao.Session{}, err
	}

	return dao.Session{
		ID:             s.ID,
		AccountID:      s.AccountID,
		PublicKey:      s.PublicKey,
		SealedKey:      sealed,
		FullAccessKeys: strings.Join(s.FullAccessKeys, ","),
		Balance:        s.Balance,
		Status:         string(s.Status),
		UserAgent:      s.UserAgent,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}, nil
}

func (r *SessionRepository) daoToDomain(s dao.Session) (domain.Session, error) {
	secret, err := r.open(s.SealedKey)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session %s -> %w", s.ID, err)
	}

	var keys []string
	if s.FullAccessKeys != "" {
		keys = strings.Split(s.FullAccessKeys, ",")
	}

	return domain.Session{
		ID:             s.ID,
		AccountID:      s.AccountID,
		Balance:        s.Balance,
		PublicKey:      s.PublicKey,
		SecretKey:      secret,
		FullAccessKeys: keys,
		Status:         domain.SessionStatus(s.Status),
		UserAgent:      s.UserAgent,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}, nil
}
