package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
)

type catalogFile struct {
	Courses    []courseEntry `yaml:"courses"`
	PromoCodes []promoEntry  `yaml:"promo_codes"`
}

type courseEntry struct {
	ID           int64  `yaml:"id"`
	InstructorID int64  `yaml:"instructor_id"`
	Title        string `yaml:"title"`
	Price        int64  `yaml:"price"`
	IsPublished  *bool  `yaml:"is_published"`
}

type promoEntry struct {
	Code          string     `yaml:"code"`
	DiscountType  string     `yaml:"discount_type"`
	DiscountValue int64      `yaml:"discount_value"`
	MinCartValue  int64      `yaml:"min_cart_value"`
	MaxUses       int        `yaml:"max_uses"`
	StartDate     *time.Time `yaml:"start_date"`
	EndDate       *time.Time `yaml:"end_date"`
	IsActive      *bool      `yaml:"is_active"`
}

type catalog struct {
	Courses    []*model.Course
	PromoCodes []*model.PromoCode
}

func loadCatalogFromYAML(path string) (*catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) (*catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &catalog{}, nil
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal catalog yaml: %w", err)
	}

	out := &catalog{
		Courses:    make([]*model.Course, 0, len(file.Courses)),
		PromoCodes: make([]*model.PromoCode, 0, len(file.PromoCodes)),
	}

	for i, entry := range file.Courses {
		if entry.ID <= 0 {
			return nil, fmt.Errorf("courses[%d]: id is required", i)
		}
		if entry.InstructorID <= 0 {
			return nil, fmt.Errorf("courses[%d]: instructor_id is required", i)
		}
		if strings.TrimSpace(entry.Title) == "" {
			return nil, fmt.Errorf("courses[%d]: title is required", i)
		}
		if entry.Price < 0 {
			return nil, fmt.Errorf("courses[%d]: price must not be negative", i)
		}

		out.Courses = append(out.Courses, &model.Course{
			ID:           entry.ID,
			InstructorID: entry.InstructorID,
			Title:        strings.TrimSpace(entry.Title),
			Price:        entry.Price,
			IsPublished:  boolOr(entry.IsPublished, true),
		})
	}

	for i, entry := range file.PromoCodes {
		code := strings.ToUpper(strings.TrimSpace(entry.Code))
		if code == "" {
			return nil, fmt.Errorf("promo_codes[%d]: code is required", i)
		}

		discountType := strings.ToLower(entry.DiscountType)
		switch discountType {
		case model.DiscountTypePercentage:
			if entry.DiscountValue <= 0 || entry.DiscountValue > 100 {
				return nil, fmt.Errorf("promo_codes[%d]: percentage must be between 1 and 100", i)
			}
		case model.DiscountTypeFixed:
			if entry.DiscountValue <= 0 {
				return nil, fmt.Errorf("promo_codes[%d]: discount_value must be positive", i)
			}
		default:
			return nil, fmt.Errorf("promo_codes[%d]: unknown discount_type %q", i, entry.DiscountType)
		}

		if entry.StartDate != nil && entry.EndDate != nil && entry.EndDate.Before(*entry.StartDate) {
			return nil, fmt.Errorf("promo_codes[%d]: end_date is before start_date", i)
		}

		out.PromoCodes = append(out.PromoCodes, &model.PromoCode{
			Code:          code,
			DiscountType:  discountType,
			DiscountValue: entry.DiscountValue,
			MinCartValue:  entry.MinCartValue,
			MaxUses:       entry.MaxUses,
			StartDate:     entry.StartDate,
			EndDate:       entry.EndDate,
			IsActive:      boolOr(entry.IsActive, true),
		})
	}

	return out, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
