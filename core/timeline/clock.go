package timeline

// Clock 播放时钟：唯一权威的当前时间游标与播放状态
//
// 协作式单线程调度：只有一个逐帧循环允许调用 Advance，
// 其它所有变更（编辑算法、输入控制器）在各自的事件回调里同步跑完，
// 不与 tick 并发。Clock 本身不加锁，串行化由持有它的 Engine 负责。
type Clock struct {
	current float64
	total   float64
	running bool
}

// NewClock 创建停在 0 点的时钟
func NewClock() *Clock {
	return &Clock{}
}

// Play 开始播放，调度器随后逐帧推进当前时间
func (c *Clock) Play() {
	c.running = true
}

// Pause 暂停播放，调度器停止推进
func (c *Clock) Pause() {
	c.running = false
}

// Running 是否处于播放状态
func (c *Clock) Running() bool {
	return c.running
}

// Current 当前时间（秒）
func (c *Clock) Current() float64 {
	return c.current
}

// Total 当前的播放上限（秒）
func (c *Clock) Total() float64 {
	return c.total
}

// SetTotal 更新播放上限，文档每次变更后由 Engine 同步过来
func (c *Clock) SetTotal(total float64) {
	if total < 0 {
		total = 0
	}
	c.total = total
}

// Seek 立即定位到 max(0, t)，不改变播放状态
// scrub 过程中允许瞬时越过 total，Advance 时再 clamp
func (c *Clock) Seek(t float64) {
	if t < 0 {
		t = 0
	}
	c.current = t
}

// Advance 逐帧推进：current += delta
// 到达 total 即 clamp 并强制停止，不循环播放
func (c *Clock) Advance(delta float64) {
	if !c.running || delta <= 0 {
		return
	}
	c.current += delta
	if c.current >= c.total {
		c.current = c.total
		c.running = false
	}
}
