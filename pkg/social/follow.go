package social

import "context"

type FollowToken struct {
	FollowerId uint64 `json:"followerId"`
	FolloweeId uint64 `json:"followeeId"`
	Timestamp  uint64 `json:"timestamp"`
	Following  bool   `json:"following"`
}

// ToggleFollow follows followeeId, or unfollows if followerId already follows it.
func (s *Service) ToggleFollow(ctx context.Context, userId string, followerId, followeeId uint64) (*FollowToken, error) {
	if err := firstErr(requireUser(userId), requireId("follower id", followerId), requireId("followee id", followeeId)); err != nil {
		return nil, err
	}

	following, err := s.queryBool(ctx, s.deployment.Follow, "isFollowing", u256(followerId), u256(followeeId))
	if err != nil {
		return nil, err
	}

	a := action{
		userId:   userId,
		contract: s.deployment.Follow,
		method:   "follow",
		event:    "Follow",
		failure:  "Follow failed.",
		args:     []any{u256(followerId), u256(followeeId)},
	}
	if following {
		a.method, a.event, a.failure = "unFollow", "UnFollow", "Unfollow failed."
	}

	ev, err := s.execute(ctx, a)
	if err != nil {
		return nil, err
	}

	d := &decoder{ev: ev}
	token := &FollowToken{
		FollowerId: d.id("followerId"),
		FolloweeId: d.id("followeeId"),
		Timestamp:  d.id("timestamp"),
		Following:  !following,
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return token, nil
}
