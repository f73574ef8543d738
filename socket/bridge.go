package socket

import (
	"mingle_server/events"
)

// UserTopic is the per-user room used for state-change delivery. Clients join
// their own room on connect and re-fetch the slice named by the event kind.
func UserTopic(userID string) string {
	return "user:" + userID
}

// BindEmitter relays engine state-change announcements to the affected
// user's room, so a change made over HTTP reaches that user's connected
// clients.
func BindEmitter(emitter *events.Emitter, s *Server) {
	for _, topic := range []string{
		events.TopicFriendsChanged,
		events.TopicRequestsChanged,
		events.TopicMatchesChanged,
		events.TopicNotificationsChanged,
	} {
		topic := topic
		emitter.Subscribe(topic, func(ev events.Event) {
			userID, ok := ev.Payload.(string)
			if !ok || userID == "" {
				return
			}
			s.Notify(UserTopic(userID), topic, map[string]interface{}{"userId": userID})
		})
	}
}
