package contractCaller

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Event(t *testing.T) {
	owner := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	ev := &Event{
		Name: "ProfileCreated",
		Args: []EventArg{
			{Name: "tokenId", Value: big.NewInt(1)},
			{Name: "owner", Value: owner},
			{Name: "handle", Value: "alice"},
			{Name: "imageURI", Value: ""},
			{Name: "huge", Value: huge},
		},
	}

	t.Run("Should access positionally and by name", func(t *testing.T) {
		v, ok := ev.Arg(2)
		require.True(t, ok)
		assert.Equal(t, "alice", v)
		_, ok = ev.Arg(9)
		assert.False(t, ok)

		id, err := ev.Uint64("tokenId")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), id)

		addr, err := ev.Address("owner")
		require.NoError(t, err)
		assert.Equal(t, owner, addr)

		_, err = ev.Uint64("huge")
		assert.Error(t, err)
		_, err = ev.String("tokenId")
		assert.Error(t, err)
		_, err = ev.Bool("missing")
		assert.Error(t, err)
	})

	t.Run("Should normalize the record", func(t *testing.T) {
		assert.Equal(t, map[string]any{
			"tokenId":  uint64(1),
			"owner":    owner.Hex(),
			"handle":   "alice",
			"imageURI": "",
			"huge":     huge.String(),
		}, ev.Record())
	})
}
