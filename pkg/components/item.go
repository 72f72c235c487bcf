package components

// ItemRarity 物品稀有度
type ItemRarity int

const (
	RarityDamaged ItemRarity = iota
	RarityCommon
	RarityUncommon
	RarityRare
	RarityLegendary
)

// MaxStars 星级数组的固定长度
const MaxStars = 5

// String 返回稀有度名称
func (r ItemRarity) String() string {
	switch r {
	case RarityDamaged:
		return "Damaged"
	case RarityCommon:
		return "Common"
	case RarityUncommon:
		return "Uncommon"
	case RarityRare:
		return "Rare"
	case RarityLegendary:
		return "Legendary"
	default:
		return "Unknown"
	}
}

// ParseItemRarity 从配置字符串解析稀有度
func ParseItemRarity(s string) (ItemRarity, bool) {
	for r := RarityDamaged; r <= RarityLegendary; r++ {
		if r.String() == s {
			return r, true
		}
	}
	return RarityCommon, false
}

// ItemState 物品生命周期状态
type ItemState int

const (
	ItemStatePickup         ItemState = iota // 在世界中等待拾取（初始状态）
	ItemStateEquipInterping                  // 正在飞向镜头
	ItemStatePickedUp                        // 瞬态：已拾取，等待装备或并入库存
	ItemStateEquipped                        // 已装备在角色身上
	ItemStateFalling                         // 被丢弃后下落中
)

// String 返回状态名称
func (s ItemState) String() string {
	switch s {
	case ItemStatePickup:
		return "Pickup"
	case ItemStateEquipInterping:
		return "EquipInterping"
	case ItemStatePickedUp:
		return "PickedUp"
	case ItemStateEquipped:
		return "Equipped"
	case ItemStateFalling:
		return "Falling"
	default:
		return "Unknown"
	}
}

// ItemKind 物品种类标签，决定附加的专用组件
type ItemKind int

const (
	ItemKindGeneric ItemKind = iota
	ItemKindWeapon           // 附带 WeaponComponent
	ItemKindAmmo             // 附带 AmmoComponent
)

// ItemComponent 所有可拾取物品的公共数据
//
// 状态只能通过 systems.ItemSystem.SetItemState 修改，
// 这样 ItemCollisionComponent 中的属性总是与状态一致。
type ItemComponent struct {
	Name  string
	Count int
	Kind  ItemKind

	Rarity ItemRarity
	// ActiveStars 长度固定为 MaxStars，由 SetRarity 重新计算
	ActiveStars []bool

	State ItemState

	// ZCurve 插值进度曲线 ID；ScaleCurve 为空表示不缩放
	ZCurve         string
	ScaleCurve     string
	InterpDuration float64
}

// NewItemComponent 创建处于 Pickup 状态的物品
func NewItemComponent(name string, kind ItemKind, rarity ItemRarity) *ItemComponent {
	item := &ItemComponent{
		Name:  name,
		Count: 1,
		Kind:  kind,
		State: ItemStatePickup,
	}
	item.SetRarity(rarity)
	return item
}

// SetRarity 设置稀有度并重新计算星级
//
// 星级数 = 稀有度等级 + 1（Damaged 一颗星，Legendary 五颗星）。
// 超出范围的稀有度是调用方错误。
func (i *ItemComponent) SetRarity(r ItemRarity) {
	if r < RarityDamaged || r > RarityLegendary {
		violate("ItemComponent.SetRarity", "rarity %d out of range", int(r))
	}
	i.Rarity = r
	i.ActiveStars = StarsForRarity(r)
}

// StarsForRarity 计算稀有度对应的星级数组
func StarsForRarity(r ItemRarity) []bool {
	stars := make([]bool, MaxStars)
	for n := 0; n <= int(r) && n < MaxStars; n++ {
		stars[n] = true
	}
	return stars
}

// StarCount 返回点亮的星星数量
func (i *ItemComponent) StarCount() int {
	n := 0
	for _, s := range i.ActiveStars {
		if s {
			n++
		}
	}
	return n
}
