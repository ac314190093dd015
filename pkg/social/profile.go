package social

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Layr-Labs/social-custody-go/pkg/contractCaller"
	"github.com/Layr-Labs/social-custody-go/pkg/contractCaller/caller"
	"github.com/Layr-Labs/social-custody-go/pkg/failures"
)

type ProfileToken struct {
	TokenId  uint64 `json:"tokenId"`
	Owner    string `json:"owner"`
	Handle   string `json:"handle"`
	ImageURI string `json:"imageURI"`
}

func (s *Service) CreateProfile(ctx context.Context, userId, handle, imageURI string) (*ProfileToken, error) {
	if err := firstErr(requireUser(userId), requireText("handle", handle)); err != nil {
		return nil, err
	}

	ev, err := s.execute(ctx, action{
		userId:   userId,
		contract: s.deployment.Profile,
		method:   "createProfile",
		event:    "ProfileCreated",
		failure:  "Create profile failed.",
		args:     []any{handle, imageURI},
	})
	if err != nil {
		return nil, err
	}

	d := &decoder{ev: ev}
	token := &ProfileToken{
		TokenId:  d.id("tokenId"),
		Owner:    d.addr("owner"),
		Handle:   d.str("handle"),
		ImageURI: d.str("imageURI"),
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *Service) UpdateProfileImage(ctx context.Context, userId string, tokenId uint64, imageURI string) (*ProfileToken, error) {
	if err := firstErr(requireUser(userId), requireId("token id", tokenId), requireText("image uri", imageURI)); err != nil {
		return nil, err
	}

	ev, err := s.execute(ctx, action{
		userId:   userId,
		contract: s.deployment.Profile,
		method:   "updateProfileImage",
		event:    "ProfileImageUpdated",
		failure:  "Update profile image failed.",
		args:     []any{u256(tokenId), imageURI},
	})
	if err != nil {
		return nil, err
	}

	d := &decoder{ev: ev}
	token := &ProfileToken{
		TokenId:  d.id("tokenId"),
		ImageURI: d.str("imageURI"),
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *Service) SetDefaultProfile(ctx context.Context, userId string, tokenId uint64) (*ProfileToken, error) {
	if err := firstErr(requireUser(userId), requireId("token id", tokenId)); err != nil {
		return nil, err
	}

	ev, err := s.execute(ctx, action{
		userId:   userId,
		contract: s.deployment.Profile,
		method:   "setDefaultProfile",
		event:    "DefaultProfileUpdated",
		failure:  "Set default profile failed.",
		args:     []any{u256(tokenId)},
	})
	if err != nil {
		return nil, err
	}

	d := &decoder{ev: ev}
	token := &ProfileToken{
		TokenId: d.id("tokenId"),
		Owner:   d.addr("owner"),
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return token, nil
}

// GetDefaultProfile returns the user's default profile, or nil if they have none.
func (s *Service) GetDefaultProfile(ctx context.Context, userId string) (*ProfileToken, error) {
	if err := requireUser(userId); err != nil {
		return nil, err
	}
	owner, err := s.keys.AddressForUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	out, err := s.query(ctx, s.deployment.Profile, "getDefaultProfile", owner)
	if err != nil {
		return nil, err
	}
	if len(out) != 3 {
		return nil, fmt.Errorf("getDefaultProfile returned %d values", len(out))
	}
	tokenId, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("getDefaultProfile returned token id of type %T", out[0])
	}
	if tokenId.Sign() == 0 {
		return nil, nil
	}
	if !tokenId.IsUint64() {
		return nil, fmt.Errorf("default profile token id overflows uint64: %s", tokenId.String())
	}
	handle, _ := out[1].(string)
	imageURI, _ := out[2].(string)
	return &ProfileToken{
		TokenId:  tokenId.Uint64(),
		Owner:    owner.Hex(),
		Handle:   handle,
		ImageURI: imageURI,
	}, nil
}

// EstimateCreateProfileGas prices profile creation for the user. No key is recovered.
func (s *Service) EstimateCreateProfileGas(ctx context.Context, userId, handle, imageURI string) (*contractCaller.GasEstimate, error) {
	if err := firstErr(requireUser(userId), requireText("handle", handle)); err != nil {
		return nil, err
	}
	from, err := s.keys.AddressForUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	h, err := s.handles.ReadHandleAs(s.deployment.Profile, from)
	if err != nil {
		return nil, err
	}
	return s.caller.EstimateGas(ctx, h, "createProfile", handle, imageURI)
}

// IsAdmin reports whether the user's wallet holds the profile contract's admin role.
func (s *Service) IsAdmin(ctx context.Context, userId string) (bool, error) {
	if err := requireUser(userId); err != nil {
		return false, err
	}
	account, err := s.keys.AddressForUser(ctx, userId)
	if err != nil {
		return false, err
	}
	h, err := s.handles.ReadHandle(s.deployment.Profile)
	if err != nil {
		return false, err
	}
	return s.caller.HasRole(ctx, h, caller.RoleAdmin, account)
}

// RequireAdmin is IsAdmin as a gate.
func (s *Service) RequireAdmin(ctx context.Context, userId string) error {
	ok, err := s.IsAdmin(ctx, userId)
	if err != nil {
		return err
	}
	if !ok {
		return failures.Forbidden("user %s is not an admin", userId)
	}
	return nil
}
