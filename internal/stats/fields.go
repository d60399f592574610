package stats

import (
	"strings"

	"github.com/gotd/td/tg"
)

// The stats responses carry a fixed set of graph-bearing fields per
// entity kind. They are enumerated here as explicit lookup tables
// (response field name -> accessor); the metric key is the field name
// with the "_graph" suffix stripped. A field the upstream stops
// sending simply yields a nil graph and is skipped; a field it adds
// is ignored until listed here.

// broadcastGraphField maps one channel stats response field to its
// metric key.
type broadcastGraphField struct {
	Name  string
	Graph func(*tg.StatsBroadcastStats) tg.StatsGraphClass
}

// megagroupGraphField maps one supergroup stats response field to its
// metric key.
type megagroupGraphField struct {
	Name  string
	Graph func(*tg.StatsMegagroupStats) tg.StatsGraphClass
}

var broadcastGraphFields = []broadcastGraphField{
	{"growth_graph", func(s *tg.StatsBroadcastStats) tg.StatsGraphClass { return s.GrowthGraph }},
	{"followers_graph", func(s *tg.StatsBroadcastStats) tg.StatsGraphClass { return s.FollowersGraph }},
	{"mute_graph", func(s *tg.StatsBroadcastStats) tg.StatsGraphClass { return s.MuteGraph }},
	{"top_hours_graph", func(s *tg.StatsBroadcastStats) tg.StatsGraphClass { return s.TopHoursGraph }},
	{"interactions_graph", func(s *tg.StatsBroadcastStats) tg.StatsGraphClass { return s.InteractionsGraph }},
	{"iv_interactions_graph", func(s *tg.StatsBroadcastStats) tg.StatsGraphClass { return s.IvInteractionsGraph }},
	{"views_by_source_graph", func(s *tg.StatsBroadcastStats) tg.StatsGraphClass { return s.ViewsBySourceGraph }},
	{"new_followers_by_source_graph", func(s *tg.StatsBroadcastStats) tg.StatsGraphClass { return s.NewFollowersBySourceGraph }},
	{"languages_graph", func(s *tg.StatsBroadcastStats) tg.StatsGraphClass { return s.LanguagesGraph }},
	{"reactions_by_emotion_graph", func(s *tg.StatsBroadcastStats) tg.StatsGraphClass { return s.ReactionsByEmotionGraph }},
	{"story_interactions_graph", func(s *tg.StatsBroadcastStats) tg.StatsGraphClass { return s.StoryInteractionsGraph }},
	{"story_reactions_by_emotion_graph", func(s *tg.StatsBroadcastStats) tg.StatsGraphClass { return s.StoryReactionsByEmotionGraph }},
}

var megagroupGraphFields = []megagroupGraphField{
	{"growth_graph", func(s *tg.StatsMegagroupStats) tg.StatsGraphClass { return s.GrowthGraph }},
	{"members_graph", func(s *tg.StatsMegagroupStats) tg.StatsGraphClass { return s.MembersGraph }},
	{"new_members_by_source_graph", func(s *tg.StatsMegagroupStats) tg.StatsGraphClass { return s.NewMembersBySourceGraph }},
	{"languages_graph", func(s *tg.StatsMegagroupStats) tg.StatsGraphClass { return s.LanguagesGraph }},
	{"messages_graph", func(s *tg.StatsMegagroupStats) tg.StatsGraphClass { return s.MessagesGraph }},
	{"actions_graph", func(s *tg.StatsMegagroupStats) tg.StatsGraphClass { return s.ActionsGraph }},
	{"top_hours_graph", func(s *tg.StatsMegagroupStats) tg.StatsGraphClass { return s.TopHoursGraph }},
	{"weekdays_graph", func(s *tg.StatsMegagroupStats) tg.StatsGraphClass { return s.WeekdaysGraph }},
}

// metricKey derives the stored metric name from a response field name.
func metricKey(fieldName string) string {
	return strings.TrimSuffix(fieldName, "_graph")
}
