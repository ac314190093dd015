package social

import (
	"context"
	"math/big"
)

type LikeToken struct {
	TokenId   uint64   `json:"tokenId"`
	PublishId uint64   `json:"publishId"`
	ProfileId uint64   `json:"profileId"`
	Owner     string   `json:"owner,omitempty"`
	Fee       *big.Int `json:"fee,omitempty"`
	Liked     bool     `json:"liked"`
}

// ToggleLike likes publishId as profileId, or removes an existing like.
func (s *Service) ToggleLike(ctx context.Context, userId string, publishId, profileId uint64) (*LikeToken, error) {
	if err := firstErr(requireUser(userId), requireId("publish id", publishId), requireId("profile id", profileId)); err != nil {
		return nil, err
	}

	liked, err := s.queryBool(ctx, s.deployment.Like, "hasLiked", u256(publishId), u256(profileId))
	if err != nil {
		return nil, err
	}

	if liked {
		ev, err := s.execute(ctx, action{
			userId:   userId,
			contract: s.deployment.Like,
			method:   "unLike",
			event:    "UnLike",
			failure:  "Unlike failed.",
			args:     []any{u256(publishId), u256(profileId)},
		})
		if err != nil {
			return nil, err
		}
		d := &decoder{ev: ev}
		token := &LikeToken{
			TokenId:   d.id("tokenId"),
			PublishId: d.id("publishId"),
			ProfileId: d.id("profileId"),
		}
		if err := d.done(); err != nil {
			return nil, err
		}
		return token, nil
	}

	ev, err := s.execute(ctx, action{
		userId:   userId,
		contract: s.deployment.Like,
		method:   "like",
		event:    "Like",
		failure:  "Like failed.",
		args:     []any{u256(publishId), u256(profileId)},
	})
	if err != nil {
		return nil, err
	}
	d := &decoder{ev: ev}
	token := &LikeToken{
		TokenId:   d.id("tokenId"),
		PublishId: d.id("publishId"),
		ProfileId: d.id("profileId"),
		Owner:     d.addr("owner"),
		Fee:       d.amount("fee"),
		Liked:     true,
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return token, nil
}
