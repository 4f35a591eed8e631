package store

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.Store 和 core.KeyValueStore 接口。
//
// 示例：
//   var s core.Store = NewMemoryStore()
//   var kv core.KeyValueStore = NewMemoryStore()
//
// 本包同时提供基于 core.Store 的协作方适配器（JSON 编码）：
//   - InteractionAdapter  实现 core.InteractionReader
//   - CatalogAdapter      实现 core.CatalogReader
//   - BoostAdapter        实现 core.BoostReader
//   - ProfileAdapter      实现 core.ProfileStore
//   - SimilarityAdapter   实现 core.SimilarityStore
//   - DirtyAdapter        实现 core.DirtyQueue
// 测试/开发用 MemoryStore，生产用 RedisStore，适配器代码完全一致。
