package contracts

import (
	"fmt"

	"github.com/Layr-Labs/social-custody-go/pkg/config"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

type ContractName string

const (
	ContractName_Profile ContractName = "Profile"
	ContractName_Publish ContractName = "Publish"
	ContractName_Follow  ContractName = "Follow"
	ContractName_Like    ContractName = "Like"
	ContractName_Comment ContractName = "Comment"
)

var (
	ProfileMetaData = &bind.MetaData{ABI: ProfileABI}
	PublishMetaData = &bind.MetaData{ABI: PublishABI}
	FollowMetaData  = &bind.MetaData{ABI: FollowABI}
	LikeMetaData    = &bind.MetaData{ABI: LikeABI}
	CommentMetaData = &bind.MetaData{ABI: CommentABI}
)

var metaDataByName = map[ContractName]*bind.MetaData{
	ContractName_Profile: ProfileMetaData,
	ContractName_Publish: PublishMetaData,
	ContractName_Follow:  FollowMetaData,
	ContractName_Like:    LikeMetaData,
	ContractName_Comment: CommentMetaData,
}

// ContractDescriptor is an address plus the ABI to talk to it with.
type ContractDescriptor struct {
	Name    ContractName
	Address common.Address
	ABI     *abi.ABI
}

func (c *ContractDescriptor) HasMethod(name string) bool {
	_, ok := c.ABI.Methods[name]
	return ok
}

func (c *ContractDescriptor) HasEvent(name string) bool {
	_, ok := c.ABI.Events[name]
	return ok
}

func NewContractDescriptor(name ContractName, address string) (*ContractDescriptor, error) {
	md, ok := metaDataByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown contract %s", name)
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid %s contract address %q", name, address)
	}
	parsed, err := md.GetAbi()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s ABI: %w", name, err)
	}
	return &ContractDescriptor{
		Name:    name,
		Address: common.HexToAddress(address),
		ABI:     parsed,
	}, nil
}

// Deployment is the set of social contracts for one environment.
type Deployment struct {
	Profile *ContractDescriptor
	Publish *ContractDescriptor
	Follow  *ContractDescriptor
	Like    *ContractDescriptor
	Comment *ContractDescriptor
}

func NewDeployment(addresses *config.ContractAddresses) (*Deployment, error) {
	if addresses == nil {
		return nil, fmt.Errorf("contract addresses are required")
	}

	d := &Deployment{}
	targets := []struct {
		name    ContractName
		address string
		dest    **ContractDescriptor
	}{
		{ContractName_Profile, addresses.Profile, &d.Profile},
		{ContractName_Publish, addresses.Publish, &d.Publish},
		{ContractName_Follow, addresses.Follow, &d.Follow},
		{ContractName_Like, addresses.Like, &d.Like},
		{ContractName_Comment, addresses.Comment, &d.Comment},
	}
	for _, t := range targets {
		desc, err := NewContractDescriptor(t.name, t.address)
		if err != nil {
			return nil, err
		}
		*t.dest = desc
	}
	return d, nil
}

// ByName returns the descriptor for name, or an error for unknown contracts.
func (d *Deployment) ByName(name string) (*ContractDescriptor, error) {
	switch ContractName(name) {
	case ContractName_Profile:
		return d.Profile, nil
	case ContractName_Publish:
		return d.Publish, nil
	case ContractName_Follow:
		return d.Follow, nil
	case ContractName_Like:
		return d.Like, nil
	case ContractName_Comment:
		return d.Comment, nil
	}
	return nil, fmt.Errorf("unknown contract %q", name)
}
