package components

// AmmoComponent 弹药拾取物的数据（物品种类为 ItemKindAmmo 时存在）
type AmmoComponent struct {
	AmmoType AmmoType
	Amount   int
}
