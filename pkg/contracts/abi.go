package contracts

// Each ABI is declared once. Event argument order is the wire contract and is
// decoded positionally.

const accessControlABI = `
	{"type":"function","name":"hasRole","stateMutability":"view","inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]}`

const ProfileABI = `[` + accessControlABI + `,
	{"type":"function","name":"createProfile","stateMutability":"nonpayable","inputs":[{"name":"handle","type":"string"},{"name":"imageURI","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"updateProfileImage","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"},{"name":"imageURI","type":"string"}],"outputs":[]},
	{"type":"function","name":"setDefaultProfile","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getDefaultProfile","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"tokenId","type":"uint256"},{"name":"handle","type":"string"},{"name":"imageURI","type":"string"}]},
	{"type":"event","name":"ProfileCreated","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"owner","type":"address","indexed":true},{"name":"handle","type":"string","indexed":false},{"name":"imageURI","type":"string","indexed":false}]},
	{"type":"event","name":"ProfileImageUpdated","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"imageURI","type":"string","indexed":false}]},
	{"type":"event","name":"DefaultProfileUpdated","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"owner","type":"address","indexed":true}]}
]`

const PublishABI = `[` + accessControlABI + `,
	{"type":"function","name":"createPublish","stateMutability":"nonpayable","inputs":[{"name":"creatorId","type":"uint256"},{"name":"contentURI","type":"string"},{"name":"metadataURI","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"updatePublish","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"},{"name":"creatorId","type":"uint256"},{"name":"contentURI","type":"string"},{"name":"metadataURI","type":"string"}],"outputs":[]},
	{"type":"function","name":"deletePublish","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"},{"name":"creatorId","type":"uint256"}],"outputs":[]},
	{"type":"event","name":"PublishCreated","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"creatorId","type":"uint256","indexed":true},{"name":"owner","type":"address","indexed":false},{"name":"contentURI","type":"string","indexed":false},{"name":"metadataURI","type":"string","indexed":false}]},
	{"type":"event","name":"PublishUpdated","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"creatorId","type":"uint256","indexed":true},{"name":"contentURI","type":"string","indexed":false},{"name":"metadataURI","type":"string","indexed":false}]},
	{"type":"event","name":"PublishDeleted","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"creatorId","type":"uint256","indexed":true}]}
]`

const FollowABI = `[` + accessControlABI + `,
	{"type":"function","name":"follow","stateMutability":"nonpayable","inputs":[{"name":"followerId","type":"uint256"},{"name":"followeeId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"unFollow","stateMutability":"nonpayable","inputs":[{"name":"followerId","type":"uint256"},{"name":"followeeId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"isFollowing","stateMutability":"view","inputs":[{"name":"followerId","type":"uint256"},{"name":"followeeId","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"event","name":"Follow","anonymous":false,"inputs":[{"name":"followerId","type":"uint256","indexed":true},{"name":"followeeId","type":"uint256","indexed":true},{"name":"timestamp","type":"uint256","indexed":false}]},
	{"type":"event","name":"UnFollow","anonymous":false,"inputs":[{"name":"followerId","type":"uint256","indexed":true},{"name":"followeeId","type":"uint256","indexed":true},{"name":"timestamp","type":"uint256","indexed":false}]}
]`

const LikeABI = `[` + accessControlABI + `,
	{"type":"function","name":"like","stateMutability":"nonpayable","inputs":[{"name":"publishId","type":"uint256"},{"name":"profileId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"unLike","stateMutability":"nonpayable","inputs":[{"name":"publishId","type":"uint256"},{"name":"profileId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"hasLiked","stateMutability":"view","inputs":[{"name":"publishId","type":"uint256"},{"name":"profileId","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"event","name":"Like","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"publishId","type":"uint256","indexed":true},{"name":"profileId","type":"uint256","indexed":true},{"name":"owner","type":"address","indexed":false},{"name":"fee","type":"uint256","indexed":false}]},
	{"type":"event","name":"UnLike","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"publishId","type":"uint256","indexed":true},{"name":"profileId","type":"uint256","indexed":true}]}
]`

const CommentABI = `[` + accessControlABI + `,
	{"type":"function","name":"createComment","stateMutability":"nonpayable","inputs":[{"name":"publishId","type":"uint256"},{"name":"profileId","type":"uint256"},{"name":"text","type":"string"},{"name":"contentURI","type":"string"}],"outputs":[]},
	{"type":"function","name":"updateComment","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"},{"name":"profileId","type":"uint256"},{"name":"text","type":"string"},{"name":"contentURI","type":"string"}],"outputs":[]},
	{"type":"function","name":"deleteComment","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"},{"name":"profileId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"likeComment","stateMutability":"nonpayable","inputs":[{"name":"commentId","type":"uint256"},{"name":"profileId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"unLikeComment","stateMutability":"nonpayable","inputs":[{"name":"commentId","type":"uint256"},{"name":"profileId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"hasLikedComment","stateMutability":"view","inputs":[{"name":"commentId","type":"uint256"},{"name":"profileId","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"event","name":"CommentCreated","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"publishId","type":"uint256","indexed":true},{"name":"profileId","type":"uint256","indexed":true},{"name":"owner","type":"address","indexed":false},{"name":"text","type":"string","indexed":false},{"name":"contentURI","type":"string","indexed":false}]},
	{"type":"event","name":"CommentUpdated","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"profileId","type":"uint256","indexed":true},{"name":"text","type":"string","indexed":false},{"name":"contentURI","type":"string","indexed":false}]},
	{"type":"event","name":"CommentDeleted","anonymous":false,"inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"profileId","type":"uint256","indexed":true}]},
	{"type":"event","name":"CommentLiked","anonymous":false,"inputs":[{"name":"commentId","type":"uint256","indexed":true},{"name":"profileId","type":"uint256","indexed":true},{"name":"likes","type":"uint256","indexed":false}]},
	{"type":"event","name":"CommentUnLiked","anonymous":false,"inputs":[{"name":"commentId","type":"uint256","indexed":true},{"name":"profileId","type":"uint256","indexed":true},{"name":"likes","type":"uint256","indexed":false}]}
]`
