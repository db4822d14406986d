package consts

const (
	MimePrefixImage = "image"
)

const (
	// RunLockKey 生成任务互斥锁
	RunLockKey = "planforge:run:lock"
	// MediaTempKey 参考图临时资源哈希
	MediaTempKey = "planforge:media:temp"
)

// HistoryRetention 历史标题保留上限
const HistoryRetention = 100
