package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/pay-watcher/internal/payment"
)

// ANAPay parses「［ANA Pay］ご利用のお知らせ」and
// 「［ANA Pay］チャージ完了のお知らせ」notification emails. Like Rakuten Pay,
// part of a payment can be redeemed from points, so the record carries a
// Breakdown.
type ANAPay struct{}

func (ANAPay) Name() string { return "ANA Pay" }

func (ANAPay) Tag() string { return "ap" }

func (ANAPay) Interval() time.Duration { return time.Minute }

func (ANAPay) Lookback() time.Duration { return 0 }

func (ANAPay) Parse(body string, received time.Time) (payment.Transaction, error) {
	var tx payment.Transaction
	var points, cash int64
	var split bool

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "ご利用") &&
			!strings.HasPrefix(line, "ポイント利用") &&
			!strings.HasPrefix(line, "チャージ金額") {
			continue
		}
		key, value, found := strings.Cut(line, "：")
		if !found {
			continue
		}

		switch key {
		case "ご利用日時":
			tx.Date = payment.NormalizeDate(value)
		case "ご利用店舗":
			tx.Merchant = value + " [ANA Pay]"
		case "ポイント利用":
			n, err := payment.ParseYen(value)
			if err != nil {
				return tx, fmt.Errorf("ana pay: %w", err)
			}
			points = n
			split = true
		case "ご利用金額":
			n, err := payment.ParseYen(value)
			if err != nil {
				return tx, fmt.Errorf("ana pay: %w", err)
			}
			cash = n
			split = true
			if tx.Merchant == "" {
				tx.Merchant = " [ANA Pay]"
			}
		case "チャージ金額":
			n, err := payment.ParseYen(value)
			if err != nil {
				return tx, fmt.Errorf("ana pay: %w", err)
			}
			cash = -n
			points = 0
			split = true
			tx.Date = payment.DateOf(received)
			tx.Merchant = "ANA Pay"
		}
	}

	if split {
		tx.Amount = points + cash
		tx.Breakdown = &payment.Breakdown{Points: points, Cash: cash}
	}

	return tx, nil
}
