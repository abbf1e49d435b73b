package reload

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// ScriptAttr marks the injected reload script.
const ScriptAttr = "data-rsc-reload"

const scriptBody = `(function(){
var path=%s;
function connect(){
var proto=location.protocol==="https:"?"wss://":"ws://";
var ws=new WebSocket(proto+location.host+path);
ws.onmessage=function(e){
try{var m=JSON.parse(e.data);}catch(_){return;}
if(m.type==="full_reload"||m.type==="styles"){location.reload();}
};
ws.onclose=function(){setTimeout(connect,1000);};
}
connect();
})();`

// Script renders the browser side of the reload channel, connecting to the
// websocket at path.
func Script(path string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<script "+ScriptAttr+">"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, scriptSource(path)); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</script>")
		return err
	})
}

func scriptSource(path string) string {
	quoted := strings.ReplaceAll(strconv.Quote(path), "<", `\u003c`)
	return fmt.Sprintf(scriptBody, quoted)
}
