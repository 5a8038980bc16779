package cmd

import (
	"testing"

	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		subs []string
	}{
		{MigrateCmd(), []string{"up", "down", "status"}},
		{WeekCmd(), []string{"show", "reset", "start", "range"}},
		{PairsCmd(), []string{"list", "auto", "manual", "remove"}},
		{UsersCmd(), []string{"list", "role"}},
	}

	for _, tt := range tests {
		for _, name := range tt.subs {
			sub, _, err := tt.cmd.Find([]string{name})
			require.NoError(t, err, "%s %s", tt.cmd.Name(), name)
			assert.Equal(t, name, sub.Name())
		}
	}
}

func TestPositionalArgs(t *testing.T) {
	week := WeekCmd()
	rangeCmd, _, err := week.Find([]string{"range"})
	require.NoError(t, err)
	assert.Error(t, rangeCmd.Args(rangeCmd, []string{"2025-01-06"}))
	assert.NoError(t, rangeCmd.Args(rangeCmd, []string{"2025-01-06", "2025-01-12"}))
}

func TestMemberNames(t *testing.T) {
	ada, bob := "Ada", "Bob"
	p := model.PairWithMembers{Members: []model.PairMemberProfile{{FullName: &ada}, {FullName: &bob}}}
	assert.Equal(t, "Ada & Bob", memberNames(p))
}

func TestAutoPairHelpSaysItReplacesPairs(t *testing.T) {
	auto, _, err := PairsCmd().Find([]string{"auto"})
	require.NoError(t, err)
	assert.Contains(t, auto.Short, "Replace this week's pairs")
	assert.NotContains(t, auto.Short, "unpaired")
}
