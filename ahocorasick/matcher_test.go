package ahocorasick_test

import (
	"testing"

	"github.com/fwojciec/pagecut"
	"github.com/fwojciec/pagecut/ahocorasick"
	"github.com/stretchr/testify/assert"
)

func TestMatcher_Contains(t *testing.T) {
	t.Parallel()

	m := ahocorasick.NewMatcher([]string{"無断転載", "All Rights Reserved", ""})

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"japanese phrase", "本サイトの無断転載を禁じます", true},
		{"case folded", "© 2024 ALL RIGHTS RESERVED.", true},
		{"full-width latin folded", "ａｌｌ ｒｉｇｈｔｓ ｒｅｓｅｒｖｅｄ", true},
		{"no phrase", "ふつうの本文です。", false},
		{"empty text", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, m.Contains(tt.text))
		})
	}
}

func TestMatcher_NoPhrases(t *testing.T) {
	t.Parallel()

	m := ahocorasick.NewMatcher(nil)
	assert.False(t, m.Contains("無断転載"))
}

func TestMatcher_DefaultRules(t *testing.T) {
	t.Parallel()

	m := ahocorasick.NewMatcher(pagecut.DefaultRules().WarningPhrases)
	assert.True(t, m.Contains("※18歳未満の方は閲覧できません"))
	assert.False(t, m.Contains("18歳以上です"))
}
