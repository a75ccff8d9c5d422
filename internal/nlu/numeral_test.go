package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumeral(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"3", 3},
		{"15", 15},
		{"零", 0},
		{"两", 2},
		{"九", 9},
		{"十", 10},
		{"十二", 12},
		{"十九", 19},
		{"二十", 20},
		{"二十三", 23},
		{"九十九", 99},
		{"", 0},
		{"abc", 0},
		{"百", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Numeral(tt.input))
		})
	}
}

func TestMinuteIdiom(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"半", 30},
		{"一刻", 15},
		{"三刻", 45},
		{"5分", 5},
		{"十五分", 15},
		{"二十五分", 25},
		{"30", 30},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, MinuteIdiom(tt.input))
		})
	}
}
