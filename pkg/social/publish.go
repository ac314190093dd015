package social

import "context"

type PublishToken struct {
	TokenId     uint64 `json:"tokenId"`
	CreatorId   uint64 `json:"creatorId"`
	Owner       string `json:"owner,omitempty"`
	ContentURI  string `json:"contentURI,omitempty"`
	MetadataURI string `json:"metadataURI,omitempty"`
}

func (s *Service) CreatePublish(ctx context.Context, userId string, creatorId uint64, contentURI, metadataURI string) (*PublishToken, error) {
	if err := firstErr(requireUser(userId), requireId("creator id", creatorId), requireText("content uri", contentURI)); err != nil {
		return nil, err
	}

	ev, err := s.execute(ctx, action{
		userId:   userId,
		contract: s.deployment.Publish,
		method:   "createPublish",
		event:    "PublishCreated",
		failure:  "Create publish failed.",
		args:     []any{u256(creatorId), contentURI, metadataURI},
	})
	if err != nil {
		return nil, err
	}

	d := &decoder{ev: ev}
	token := &PublishToken{
		TokenId:     d.id("tokenId"),
		CreatorId:   d.id("creatorId"),
		Owner:       d.addr("owner"),
		ContentURI:  d.str("contentURI"),
		MetadataURI: d.str("metadataURI"),
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *Service) UpdatePublish(ctx context.Context, userId string, tokenId, creatorId uint64, contentURI, metadataURI string) (*PublishToken, error) {
	if err := firstErr(
		requireUser(userId),
		requireId("token id", tokenId),
		requireId("creator id", creatorId),
		requireText("content uri", contentURI),
	); err != nil {
		return nil, err
	}

	ev, err := s.execute(ctx, action{
		userId:   userId,
		contract: s.deployment.Publish,
		method:   "updatePublish",
		event:    "PublishUpdated",
		failure:  "Update publish failed.",
		args:     []any{u256(tokenId), u256(creatorId), contentURI, metadataURI},
	})
	if err != nil {
		return nil, err
	}

	d := &decoder{ev: ev}
	token := &PublishToken{
		TokenId:     d.id("tokenId"),
		CreatorId:   d.id("creatorId"),
		ContentURI:  d.str("contentURI"),
		MetadataURI: d.str("metadataURI"),
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *Service) DeletePublish(ctx context.Context, userId string, tokenId, creatorId uint64) (*PublishToken, error) {
	if err := firstErr(requireUser(userId), requireId("token id", tokenId), requireId("creator id", creatorId)); err != nil {
		return nil, err
	}

	ev, err := s.execute(ctx, action{
		userId:   userId,
		contract: s.deployment.Publish,
		method:   "deletePublish",
		event:    "PublishDeleted",
		failure:  "Delete publish failed.",
		args:     []any{u256(tokenId), u256(creatorId)},
	})
	if err != nil {
		return nil, err
	}

	d := &decoder{ev: ev}
	token := &PublishToken{
		TokenId:   d.id("tokenId"),
		CreatorId: d.id("creatorId"),
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return token, nil
}
