package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// ReceiptService signs match-result receipts so clients and external
// leaderboard services can verify an outcome without trusting the
// client that reported it.
type ReceiptService struct {
	receiptSecret string
	receiptIssuer string
}

const receiptTTL = time.Hour * 24

func NewReceiptService(secret, issuer string) *ReceiptService {
	return &ReceiptService{
		receiptSecret: secret,
		receiptIssuer: issuer,
	}
}

// GenerateReceipt signs a receipt for one user's result in a finished
// match. net is the signed wallet delta applied at settlement.
func (s *ReceiptService) GenerateReceipt(userID, matchID string, won bool, net int64) (string, error) {
	if s == nil {
		return "", fmt.Errorf("receipt service is nil")
	}
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	if matchID == "" {
		return "", fmt.Errorf("match id is required")
	}
	if s.receiptSecret == "" || s.receiptIssuer == "" {
		return "", fmt.Errorf("receipt config is incomplete")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": s.receiptIssuer,
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(receiptTTL).Unix(),
		"mid": matchID,
		"won": won,
		"net": net,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.receiptSecret))
}

// VerifyReceipt checks the signature and expiry of a receipt and
// returns its claims.
func (s *ReceiptService) VerifyReceipt(tokenString string) (jwt.MapClaims, error) {
	if s == nil || s.receiptSecret == "" {
		return nil, fmt.Errorf("receipt config is incomplete")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.receiptSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("receipt is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	if iss, _ := claims["iss"].(string); iss != s.receiptIssuer {
		return nil, fmt.Errorf("unexpected issuer: %v", claims["iss"])
	}
	return claims, nil
}
