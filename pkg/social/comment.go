package social

import "context"

type CommentToken struct {
	TokenId    uint64 `json:"tokenId"`
	PublishId  uint64 `json:"publishId,omitempty"`
	ProfileId  uint64 `json:"profileId"`
	Owner      string `json:"owner,omitempty"`
	Text       string `json:"text,omitempty"`
	ContentURI string `json:"contentURI,omitempty"`
}

type CommentLikeToken struct {
	CommentId uint64 `json:"commentId"`
	ProfileId uint64 `json:"profileId"`
	Likes     uint64 `json:"likes"`
	Liked     bool   `json:"liked"`
}

func (s *Service) CreateComment(ctx context.Context, userId string, publishId, profileId uint64, text, contentURI string) (*CommentToken, error) {
	if err := firstErr(
		requireUser(userId),
		requireId("publish id", publishId),
		requireId("profile id", profileId),
		requireText("text", text),
	); err != nil {
		return nil, err
	}

	ev, err := s.execute(ctx, action{
		userId:   userId,
		contract: s.deployment.Comment,
		method:   "createComment",
		event:    "CommentCreated",
		failure:  "Create comment failed.",
		args:     []any{u256(publishId), u256(profileId), text, contentURI},
	})
	if err != nil {
		return nil, err
	}

	d := &decoder{ev: ev}
	token := &CommentToken{
		TokenId:    d.id("tokenId"),
		PublishId:  d.id("publishId"),
		ProfileId:  d.id("profileId"),
		Owner:      d.addr("owner"),
		Text:       d.str("text"),
		ContentURI: d.str("contentURI"),
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *Service) UpdateComment(ctx context.Context, userId string, tokenId, profileId uint64, text, contentURI string) (*CommentToken, error) {
	if err := firstErr(
		requireUser(userId),
		requireId("token id", tokenId),
		requireId("profile id", profileId),
		requireText("text", text),
	); err != nil {
		return nil, err
	}

	ev, err := s.execute(ctx, action{
		userId:   userId,
		contract: s.deployment.Comment,
		method:   "updateComment",
		event:    "CommentUpdated",
		failure:  "Update comment failed.",
		args:     []any{u256(tokenId), u256(profileId), text, contentURI},
	})
	if err != nil {
		return nil, err
	}

	d := &decoder{ev: ev}
	token := &CommentToken{
		TokenId:    d.id("tokenId"),
		ProfileId:  d.id("profileId"),
		Text:       d.str("text"),
		ContentURI: d.str("contentURI"),
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *Service) DeleteComment(ctx context.Context, userId string, tokenId, profileId uint64) (*CommentToken, error) {
	if err := firstErr(requireUser(userId), requireId("token id", tokenId), requireId("profile id", profileId)); err != nil {
		return nil, err
	}

	ev, err := s.execute(ctx, action{
		userId:   userId,
		contract: s.deployment.Comment,
		method:   "deleteComment",
		event:    "CommentDeleted",
		failure:  "Delete comment failed.",
		args:     []any{u256(tokenId), u256(profileId)},
	})
	if err != nil {
		return nil, err
	}

	d := &decoder{ev: ev}
	token := &CommentToken{
		TokenId:   d.id("tokenId"),
		ProfileId: d.id("profileId"),
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return token, nil
}

// ToggleCommentLike likes commentId as profileId, or removes an existing like.
func (s *Service) ToggleCommentLike(ctx context.Context, userId string, commentId, profileId uint64) (*CommentLikeToken, error) {
	if err := firstErr(requireUser(userId), requireId("comment id", commentId), requireId("profile id", profileId)); err != nil {
		return nil, err
	}

	liked, err := s.queryBool(ctx, s.deployment.Comment, "hasLikedComment", u256(commentId), u256(profileId))
	if err != nil {
		return nil, err
	}

	a := action{
		userId:   userId,
		contract: s.deployment.Comment,
		method:   "likeComment",
		event:    "CommentLiked",
		failure:  "Like comment failed.",
		args:     []any{u256(commentId), u256(profileId)},
	}
	if liked {
		a.method, a.event, a.failure = "unLikeComment", "CommentUnLiked", "Unlike comment failed."
	}

	ev, err := s.execute(ctx, a)
	if err != nil {
		return nil, err
	}

	d := &decoder{ev: ev}
	token := &CommentLikeToken{
		CommentId: d.id("commentId"),
		ProfileId: d.id("profileId"),
		Likes:     d.id("likes"),
		Liked:     !liked,
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return token, nil
}
