package app

import (
	"github.com/dkeye/Meet/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// BcryptPasswords stores room passwords as bcrypt hashes and checks join
// candidates against them.
type BcryptPasswords struct {
	Cost int
}

func (p BcryptPasswords) Hash(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	if len(plain) > MaxPasswordBytes {
		return "", domain.Errorf(domain.CodeInvalidParameter, "password longer than %d bytes", MaxPasswordBytes)
	}
	cost := p.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (p BcryptPasswords) ValidateRoomPassword(room *domain.Room, candidate string) bool {
	if room.Password == "" {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(room.Password), []byte(candidate)) == nil
}
